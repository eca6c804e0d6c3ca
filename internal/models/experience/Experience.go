// This file contains the Experience struct. An experience owns the configuration document produced by the editor,
// plus its title, owner and publish state. Only published experiences are served to the viewer.

package experience

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

// Experience represents an authored AR scene
type Experience struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Config      scene.Document     `bson:"config" json:"config"`
	IsPublished bool               `bson:"is_published" json:"isPublished"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Update holds the fields of a partial experience update. Nil or empty fields keep their stored value.
type Update struct {
	Title       *string
	Description *string
	Config      *scene.Document
}

// PublicView is the subset of an experience the viewer receives.
type PublicView struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Config    scene.Document     `json:"config"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Public returns the viewer-facing view of e.
func (e *Experience) Public() PublicView {
	return PublicView{
		ID:        e.ID,
		Title:     e.Title,
		Config:    e.Config,
		CreatedAt: e.CreatedAt,
	}
}
