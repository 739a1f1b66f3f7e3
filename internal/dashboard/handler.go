package dashboard

import (
	"context"
	"strconv"

	"asset-inventory-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type Summarizer interface {
	Summary(ctx context.Context, activityLimit int) (*Summary, error)
}

// GET /api/dashboard/summary?activityLimit=10
func SummaryHandler(s Summarizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := DefaultActivityLimit
		if raw := c.Query("activityLimit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return apperr.Validation("activityLimit", "activityLimit must be an integer (got %q)", raw)
			}
			limit = n
		}

		summary, err := s.Summary(c.UserContext(), clampLimit(limit))
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}
