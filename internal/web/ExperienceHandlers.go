package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/adhvyk/ar-studio/webserver/internal/common"
	"github.com/adhvyk/ar-studio/webserver/internal/models/experience"
)

func (s *WebServer) createExperience(c *fiber.Ctx) error {
	var req common.CreateExperienceRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Title is required"})
	}

	exp, err := s.clientService.CreateExperience(c.UserContext(), caller(c).ID, req.Title, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(exp)
}

func (s *WebServer) listExperiences(c *fiber.Ctx) error {
	experiences, err := s.clientService.ListExperiences(c.UserContext(), caller(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(experiences)
}

func (s *WebServer) getExperience(c *fiber.Ctx) error {
	var req common.ExperienceIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return badRequest(c, err)
	}

	exp, err := s.clientService.GetExperience(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(exp)
}

// saveExperience stores the editor's work. Omitted fields keep their stored value; a config replaces the stored
// one whole and must be a valid document.
func (s *WebServer) saveExperience(c *fiber.Ctx) error {
	var req common.SaveExperienceRequest
	if err := ValidateRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return badRequest(c, err)
	}

	exp, err := s.clientService.SaveExperience(c.UserContext(), caller(c), id, experience.Update{
		Title:       req.Title,
		Description: req.Description,
		Config:      req.Config,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(exp)
}

func (s *WebServer) publishExperience(c *fiber.Ctx) error {
	var req common.PublishExperienceRequest
	if err := ValidateRequest(c, &req); err != nil {
		return badRequest(c, err)
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return badRequest(c, err)
	}

	exp, err := s.clientService.PublishExperience(c.UserContext(), caller(c), id, *req.IsPublished)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(exp)
}

// getPublicExperience serves the viewer. No token is needed and unpublished experiences answer 404 like missing ones.
func (s *WebServer) getPublicExperience(c *fiber.Ctx) error {
	notFound := fiber.Map{"message": "Experience not found"}
	var req common.ExperienceIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusNotFound).JSON(notFound)
	}
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(notFound)
	}

	view, err := s.clientService.GetPublicExperience(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(view)
}
