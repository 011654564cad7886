package audit

import (
	"github.com/gofiber/fiber/v2"

	"yarn-backend/internal/store"
)

const maxListLimit = 500

// GET /api/audit-logs?entityType=category&entityId=...&limit=100
func ListAuditLogsHandler(trail store.AuditTrail) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > maxListLimit {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
		}

		logs, err := trail.ListAuditLogs(c.UserContext(), store.AuditFilter{
			EntityType: c.Query("entityType"),
			EntityID:   c.Query("entityId"),
			Limit:      limit,
		})
		if err != nil {
			return err
		}
		return c.JSON(logs)
	}
}
