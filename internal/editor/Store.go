package editor

import (
	"context"

	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

// Store is the persistence boundary of an editing session. Implementations decide who may read or write
// an experience; LoadConfig reports a missing or forbidden experience as an error.
type Store interface {
	LoadConfig(ctx context.Context, experienceID string) (*scene.Document, error)
	SaveConfig(ctx context.Context, experienceID string, doc scene.Document) error
}
