package handlers

import (
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// GetLatestNotifications returns the bell contents
// GET /api/notifications/latest
func GetLatestNotifications(c *fiber.Ctx) error {
	if bell == nil {
		return utils.JSONError(c, fiber.StatusServiceUnavailable, "Notifications unavailable")
	}
	feed := bell.Feed()
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"notifications": feed.Notifications,
		"unread":        feed.Unread,
	})
}
