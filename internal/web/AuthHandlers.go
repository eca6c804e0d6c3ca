package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adhvyk/ar-studio/webserver/internal/common"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
)

// authResponse returns the user together with a fresh access and refresh token.
func (s *WebServer) authResponse(c *fiber.Ctx, status int, u *user.User) error {
	accessToken, err := s.tokens.AccessToken(u)
	if err != nil {
		return err
	}
	refreshToken, err := s.tokens.RefreshToken(u)
	if err != nil {
		return err
	}

	return c.Status(status).JSON(fiber.Map{
		"_id":          u.ID.Hex(),
		"name":         u.Name,
		"email":        u.Email,
		"role":         u.Role,
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

func (s *WebServer) registerUser(c *fiber.Ctx) error {
	var req common.RegisterRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Debugf("Register request validation failed: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Please add all fields"})
	}

	u, err := s.clientService.RegisterUser(c.UserContext(), &req)
	if err != nil {
		s.logger.Infof("User registration failed: %v", err)
		return respondError(c, err)
	}

	return s.authResponse(c, http.StatusCreated, u)
}

func (s *WebServer) loginUser(c *fiber.Ctx) error {
	var req common.LoginRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Invalid credentials"})
	}

	u, err := s.clientService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		s.logger.Infof("User login failed: %v", err)
		return respondError(c, err)
	}

	s.logger.Infof("User %s logged in", u.ID.Hex())
	return s.authResponse(c, http.StatusOK, u)
}

func (s *WebServer) refreshToken(c *fiber.Ctx) error {
	var req common.RefreshRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "No refresh token provided"})
	}

	userID, err := s.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Debugf("Refresh rejected: %v", err)
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid refresh token"})
	}

	u, err := s.clientService.GetUser(c.UserContext(), userID)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "User not found"})
	}

	accessToken, err := s.tokens.AccessToken(u)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"token": accessToken})
}

// logoutUser is stateless: clients drop their tokens.
func (s *WebServer) logoutUser(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logged out successfully"})
}

func (s *WebServer) getMe(c *fiber.Ctx) error {
	u, err := s.clientService.GetUser(c.UserContext(), caller(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(u)
}
