package protocol

import (
	"context"

	"asset-inventory-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type Builder interface {
	Assemble(ctx context.Context, req Request) (*Protocol, error)
}

// POST /api/inventory/generate-protocol
func GenerateHandler(b Builder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Request
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		p, err := b.Assemble(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /api/inventory/generate-protocol/html
func GenerateHTMLHandler(b Builder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Request
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("", "invalid request body: %v", err)
		}
		p, err := b.Assemble(c.UserContext(), body)
		if err != nil {
			return err
		}
		html, err := Render(p)
		if err != nil {
			return apperr.Internal(err, "protocol could not be rendered")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(html)
	}
}
