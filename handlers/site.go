// handlers/site.go - Public site HTTP handlers
package handlers

import (
	"time"

	"lanarena/realtime"
	"lanarena/services"
	"lanarena/storage"
	"lanarena/utils"

	"github.com/gofiber/fiber/v2"
)

var (
	settingsService     *services.SettingsService
	registrationService *services.RegistrationService
	bell                *services.Bell
	broker              realtime.Broker
	store               storage.Store
	signer              *storage.Signer
)

// PublicDeps is what the public handlers need.
type PublicDeps struct {
	Settings      *services.SettingsService
	Registrations *services.RegistrationService
	Bell          *services.Bell
	Broker        realtime.Broker
	Store         storage.Store
	Signer        *storage.Signer
}

// InitPublicHandlers installs the services used by the public handlers
func InitPublicHandlers(deps PublicDeps) {
	settingsService = deps.Settings
	registrationService = deps.Registrations
	bell = deps.Bell
	broker = deps.Broker
	store = deps.Store
	signer = deps.Signer
}

// GetSiteSettings returns the home page hero and event date
// GET /api/site/settings
func GetSiteSettings(c *fiber.Ctx) error {
	settings, err := settingsService.Get(c.UserContext())
	if err != nil {
		return utils.Fail(c, "load site settings", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"settings": settings})
}

// GetCountdown returns the time left until the event
// GET /api/site/countdown
func GetCountdown(c *fiber.Ctx) error {
	countdown, err := settingsService.Countdown(c.UserContext())
	if err != nil {
		return utils.Fail(c, "compute countdown", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"countdown": countdown})
}

// Health reports that the server is up
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
