// Package web holds the request helpers shared by the fiber handlers.
package web

import (
	"strconv"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name, "%s must be a positive integer (got %q)", name, raw)
	}
	return uint(id), nil
}

// QueryID reads an optional positive integer query parameter; 0 means absent.
func QueryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name, "%s must be a positive integer (got %q)", name, raw)
	}
	return uint(id), nil
}

// Bind parses the JSON body into dst and runs struct validation on it.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("", "invalid request body: %v", err)
	}
	return validation.Struct(dst)
}
