// This file contains the WebServer: the fiber app, its middleware stack, the route table and the middleware that
// authenticates requests. Handlers live next to it, one file per resource.
//
// Every request passes through helmet, CORS (restricted to the frontend origin) and a per-IP rate limiter.
// Handlers answer known failures themselves with {"message": ...}; anything else is returned to the app's
// error handler, which answers 500.

package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/adhvyk/ar-studio/webserver/internal/config"
	"github.com/adhvyk/ar-studio/webserver/internal/log"
	"github.com/adhvyk/ar-studio/webserver/internal/models/user"
	"github.com/adhvyk/ar-studio/webserver/internal/services"
)

const callerKey = "caller"

type WebServer struct {
	app           *fiber.App
	tokens        *TokenIssuer
	clientService *services.ClientService
	development   bool
	logger        *log.Logger
}

// NewWebServer builds the fiber app and registers all routes.
func NewWebServer(cfg *config.Config, clientService *services.ClientService, logger *log.Logger) *WebServer {
	s := &WebServer{
		tokens:        NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		clientService: clientService,
		development:   cfg.Development,
		logger:        logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "ar-studio",
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(helmet.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Authorization, Content-Type",
		AllowCredentials: cfg.FrontendURL != "*",
	}))
	s.app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests, please try again later."})
		},
	}))

	s.SetupRoutes()
	return s
}

// App exposes the underlying fiber app, mainly for app.Test.
func (s *WebServer) App() *fiber.App {
	return s.app
}

func (s *WebServer) Run(address string) error {
	s.logger.Infof("Web server listening on %s", address)
	return s.app.Listen(address)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *WebServer) SetupRoutes() {
	s.app.Get("/health", s.healthCheck)

	api := s.app.Group("/api")
	if s.development {
		api.Get("/routes", s.getRoutes)
	}

	auth := api.Group("/auth")
	auth.Post("/register", s.registerUser)
	auth.Post("/login", s.loginUser)
	auth.Post("/refresh", s.refreshToken)
	auth.Post("/logout", s.logoutUser)
	auth.Get("/me", s.tokenRequired(s.getMe))

	assets := api.Group("/assets")
	assets.Post("/upload-url", s.tokenRequired(s.getUploadURL))
	assets.Get("/", s.tokenRequired(s.listAssets))
	assets.Delete("/:id", s.tokenRequired(s.deleteAsset))

	experiences := api.Group("/experiences")
	experiences.Get("/public/:id", s.getPublicExperience)
	experiences.Post("/", s.tokenRequired(s.createExperience))
	experiences.Get("/", s.tokenRequired(s.listExperiences))
	experiences.Get("/:id", s.tokenRequired(s.getExperience))
	experiences.Put("/:id", s.tokenRequired(s.saveExperience))
	experiences.Post("/:id/publish", s.tokenRequired(s.publishExperience))
}

// tokenRequired rejects requests without a valid access token and stores the caller for the handler.
func (s *WebServer) tokenRequired(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("Missing Authorization header")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, no token"})
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			s.logger.Debug("Invalid Authorization header format. Expected: `Bearer <token>`")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid Authorization header format. Expected: `Bearer <token>`"})
		}

		caller, err := s.tokens.ParseAccessToken(tokenString)
		if err != nil {
			s.logger.Debugf("Rejected token: %v", err)
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, token failed"})
		}

		c.Locals(callerKey, caller)
		return handler(c)
	}
}

// caller returns the user authenticated by tokenRequired. Only ID and Role are set.
func caller(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(callerKey).(*user.User)
	return u
}

func (s *WebServer) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	s.logger.Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	body := fiber.Map{"success": false, "message": "Internal Server Error"}
	if s.development {
		body["error"] = err.Error()
	}
	return c.Status(http.StatusInternalServerError).JSON(body)
}

func (s *WebServer) getRoutes(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(s.app.GetRoutes(true))
}

func (s *WebServer) healthCheck(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
