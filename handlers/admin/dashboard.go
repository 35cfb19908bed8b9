package admin

import (
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns the counters and latest activity
// GET /api/admin/dashboard
func GetDashboard(c *fiber.Ctx) error {
	d, err := dashboardService.Load(c.UserContext())
	if err != nil {
		return utils.Fail(c, "load dashboard", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"registrations":        d.Registrations,
		"notifications":        d.Notifications,
		"recent_registrations": d.RecentRegistrations,
		"recent_notifications": d.RecentNotifications,
	})
}
