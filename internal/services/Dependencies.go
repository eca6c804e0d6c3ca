// This file declares what the services need from the layers around them. The MongoDB managers under internal/models
// satisfy the store interfaces, StorageService satisfies ObjectStorage and AMPQService satisfies EventPublisher.

package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

type ExperienceStore interface {
	CreateExperience(ctx context.Context, userID primitive.ObjectID, title, description string) (*experience.Experience, error)
	GetExperience(ctx context.Context, id primitive.ObjectID) (*experience.Experience, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]experience.Experience, error)
	UpdateExperience(ctx context.Context, id primitive.ObjectID, update experience.Update) (*experience.Experience, error)
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*experience.Experience, error)
}

type UserStore interface {
	GenerateUser(ctx context.Context, name, email, password string) (*user.User, error)
	GetUserByID(ctx context.Context, userID primitive.ObjectID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type AssetStore interface {
	CreateAsset(ctx context.Context, a *asset.Asset) error
	GetAsset(ctx context.Context, id primitive.ObjectID) (*asset.Asset, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]asset.Asset, error)
	DeleteAsset(ctx context.Context, id primitive.ObjectID) error
}

// AssetStatusUpdater is what the AMQP consumer needs to mark uploads as finished.
type AssetStatusUpdater interface {
	SetStatusByKey(ctx context.Context, key, status string) error
}

// ObjectStorage hands out direct-upload URLs and removes stored files.
type ObjectStorage interface {
	NewKey(extension string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
	DeleteObject(ctx context.Context, key string) error
}

// EventPublisher announces publish-state changes of experiences.
type EventPublisher interface {
	PublishExperienceEvent(ctx context.Context, experienceID primitive.ObjectID, published bool) error
}
