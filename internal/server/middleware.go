package server

import (
	"time"

	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = web.Describe(err)
		}
		entry := log.WithFields(logrus.Fields{
			"requestId": c.Locals("requestid"),
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    status,
			"latencyMs": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry = entry.WithField("error", err.Error())
		}
		entry.Info("request")
		return err
	}
}
