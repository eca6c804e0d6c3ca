// This file contains the actual validator implementation for incoming http requests.
//
// You can implement custom validators for each field in this file and reference them in the request structs.

package web

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adhvyk/ar-studio/webserver/internal/models/asset"
)

var validate *validator.Validate

var extensionPattern = regexp.MustCompile(`^\.?[A-Za-z0-9]{1,10}$`)

// Initialize the custom validators
func init() {
	validate = validator.New()
	validate.RegisterValidation("assetType", validateAssetType)
	validate.RegisterValidation("fileExtension", validateFileExtension)
}

// ValidateRequest fills req from the request and validates it.
// Bodies are parsed for POST, PUT and PATCH, query parameters for GET. Path parameters are always parsed, last,
// so a body can never override them.
func ValidateRequest(c *fiber.Ctx, req interface{}) error {
	switch c.Method() {
	case fiber.MethodGet:
		if err := c.QueryParser(req); err != nil {
			return err
		}
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if err := c.BodyParser(req); err != nil {
			return err
		}
	}

	if err := c.ParamsParser(req); err != nil {
		return err
	}
	return validate.Struct(req)
}

// validateAssetType accepts the asset types that can be uploaded.
func validateAssetType(fl validator.FieldLevel) bool {
	return asset.IsValidType(fl.Field().String())
}

// validateFileExtension accepts a short alphanumeric extension, with or without the leading dot.
func validateFileExtension(fl validator.FieldLevel) bool {
	return extensionPattern.MatchString(fl.Field().String())
}
