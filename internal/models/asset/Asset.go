package asset

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset types accepted for upload.
const (
	TypeImage   = "IMAGE"
	TypeVideo   = "VIDEO"
	TypeModel3D = "MODEL_3D"
	TypeAudio   = "AUDIO"
)

var ValidTypes = []string{TypeImage, TypeVideo, TypeModel3D, TypeAudio}

// Upload states. An asset is pending from the moment its upload URL is issued until the storage pipeline
// reports the object as uploaded.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
)

// Asset is a user-uploaded file. Its URL is what scene objects reference as content.
type Asset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      string             `bson:"type" json:"type"`
	URL       string             `bson:"url" json:"url"`
	Key       string             `bson:"key" json:"key"`
	MimeType  string             `bson:"mime_type" json:"mimeType"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// IsValidType checks if t is one of ValidTypes
func IsValidType(t string) bool {
	return slices.Contains(ValidTypes, t)
}
