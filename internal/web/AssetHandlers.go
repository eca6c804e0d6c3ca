package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/common"
)

// getUploadURL issues a presigned upload URL and records the pending asset.
func (s *WebServer) getUploadURL(c *fiber.Ctx) error {
	var req common.UploadURLRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Debugf("Upload request validation failed: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	ticket, err := s.clientService.RequestUploadURL(c.UserContext(), caller(c).ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(ticket)
}

func (s *WebServer) listAssets(c *fiber.Ctx) error {
	assets, err := s.clientService.ListAssets(c.UserContext(), caller(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(assets)
}

func (s *WebServer) deleteAsset(c *fiber.Ctx) error {
	var req common.AssetIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return badRequest(c, err)
	}

	if err := s.clientService.DeleteAsset(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Asset deleted"})
}
