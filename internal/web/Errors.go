package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
	"github.com/adhvyk/ar-studio/webserver/internal/models/scene"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
	"github.com/adhvyk/ar-studio/webserver/internal/services"
)

// statusFor maps the errors of the service layer to a status and client message.
// Errors it does not know map to 500.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, scene.ErrMalformedDocument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, experience.ErrTitleRequired):
		return http.StatusBadRequest, "Title is required"
	case errors.Is(err, asset.ErrInvalidAssetType):
		return http.StatusBadRequest, "Invalid asset type"
	case errors.Is(err, user.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, services.ErrNotAuthorized):
		return http.StatusForbidden, "Not authorized"
	case errors.Is(err, services.ErrNotPublished):
		return http.StatusNotFound, "Experience is not published"
	case errors.Is(err, experience.ErrExperienceNotFound):
		return http.StatusNotFound, "Experience not found"
	case errors.Is(err, asset.ErrAssetNotFound):
		return http.StatusNotFound, "Asset not found"
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable, "Asset storage is not configured"
	}
	return http.StatusInternalServerError, ""
}

// respondError answers known errors directly and hands the rest to the error handler.
func respondError(c *fiber.Ctx, err error) error {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"message": message})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
}
