package admin

import (
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// ManualCleanup runs one orphan upload sweep now
// POST /api/admin/cleanup/manual
func ManualCleanup(c *fiber.Ctx) error {
	if cleanupService == nil {
		return utils.JSONError(c, fiber.StatusServiceUnavailable, "Service unavailable")
	}
	report, err := cleanupService.Sweep(c.UserContext())
	if err != nil {
		return utils.Fail(c, "sweep uploads", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"message": "Cleanup completed",
		"report":  report,
	})
}

// GetCleanupStats returns the last sweep and running totals
// GET /api/admin/cleanup/stats
func GetCleanupStats(c *fiber.Ctx) error {
	if cleanupService == nil {
		return utils.JSONError(c, fiber.StatusServiceUnavailable, "Service unavailable")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"stats": cleanupService.Stats()})
}
