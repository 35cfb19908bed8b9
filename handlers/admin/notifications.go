// handlers/admin/notifications.go - Notification management
package admin

import (
	"lanarena/models"
	"lanarena/services"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists notifications with their counters
// GET /api/admin/notifications
func GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	list, err := notificationService.List(ctx)
	if err != nil {
		return utils.Fail(c, "list notifications", err)
	}
	stats, err := notificationService.Stats(ctx)
	if err != nil {
		return utils.Fail(c, "count notifications", err)
	}

	views := make([]models.NotificationView, 0, len(list))
	for _, n := range list {
		views = append(views, n.View())
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"notifications": views,
		"stats":         stats,
	})
}

// CreateNotification saves a draft or scheduled notification
// POST /api/admin/notifications
func CreateNotification(c *fiber.Ctx) error {
	var in services.NotificationInput
	if err := c.BodyParser(&in); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	n, err := notificationService.Create(c.UserContext(), in)
	if err != nil {
		return utils.Fail(c, "create notification", err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"notification": n.View()})
}

// SendNotification marks a notification as sent
// POST /api/admin/notifications/:id/send
func SendNotification(c *fiber.Ctx) error {
	n, err := notificationService.Send(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, "send notification", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"notification": n.View()})
}

// DeleteNotification removes a notification
// DELETE /api/admin/notifications/:id
func DeleteNotification(c *fiber.Ctx) error {
	if err := notificationService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return utils.Fail(c, "delete notification", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"message": "Notification deleted"})
}
