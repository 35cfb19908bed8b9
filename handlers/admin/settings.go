package admin

import (
	"lanarena/services"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

// GetSettings returns the site settings row
// GET /api/admin/settings
func GetSettings(c *fiber.Ctx) error {
	settings, err := settingsService.Get(c.UserContext())
	if err != nil {
		return utils.Fail(c, "load site settings", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"settings": settings})
}

// UpdateSettings saves the home page hero and event date
// PUT /api/admin/settings
func UpdateSettings(c *fiber.Ctx) error {
	var in services.SettingsInput
	if err := c.BodyParser(&in); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	settings, err := settingsService.Save(c.UserContext(), in)
	if err != nil {
		return utils.Fail(c, "save site settings", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"settings": settings,
		"message":  "Settings saved",
	})
}
