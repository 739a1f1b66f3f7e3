package audit

import (
	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/audit-logs?entityType=asset_instance&entityId=1&action=write_off&limit=50
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID := c.QueryInt("entityId", 0)
		if entityID < 0 {
			return apperr.Validation("entityId", "entityId must be a positive integer")
		}

		logs, err := List(c.UserContext(), db, Filter{
			EntityType: c.Query("entityType"),
			EntityID:   uint(entityID),
			Action:     models.AuditAction(c.Query("action")),
			Limit:      c.QueryInt("limit", 100),
		})
		if err != nil {
			return apperr.Internal(err, "audit logs could not be listed")
		}
		return c.JSON(logs)
	}
}
