// This file contains the expected structure of incoming requests to the API. These structs are used to
// validate incoming requests, provide a consistent interface for handling requests, and to pass data to the
// appropriate handlers.

// Note that all structs are independent of the user id. This is because the user id is extracted from the JWT token.
// Endpoints that only need the caller (listing experiences or assets, /auth/me) have no request struct.

package common

import (
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UploadURLRequest struct {
	Extension   string `json:"extension" validate:"required,fileExtension"`
	ContentType string `json:"contentType" validate:"required"`
	Type        string `json:"type" validate:"required,assetType"`
	Name        string `json:"name" validate:"required"`
}

type AssetIDRequest struct {
	ID string `json:"-" params:"id" validate:"required,len=24,hexadecimal"`
}

type CreateExperienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type ExperienceIDRequest struct {
	ID string `json:"-" params:"id" validate:"required,len=24,hexadecimal"`
}

// SaveExperienceRequest is a partial update: omitted fields keep their stored value.
type SaveExperienceRequest struct {
	ID          string          `json:"-" params:"id" validate:"required,len=24,hexadecimal"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Config      *scene.Document `json:"config"`
}

type PublishExperienceRequest struct {
	ID          string `json:"-" params:"id" validate:"required,len=24,hexadecimal"`
	IsPublished *bool  `json:"isPublished" validate:"required"`
}
