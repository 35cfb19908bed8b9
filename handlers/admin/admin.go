// handlers/admin/admin.go - Back-office handler wiring
package admin

import (
	"lanarena/services"
)

var (
	authService         *services.AuthService
	registrationService *services.RegistrationService
	notificationService *services.NotificationService
	settingsService     *services.SettingsService
	dashboardService    *services.DashboardService
	cleanupService      *services.CleanupService
	sheetsExporter      services.SheetsExporter
	secureCookies       bool
)

// Deps is what the admin handlers need. Sheets may be nil when the export is
// not configured.
type Deps struct {
	Auth          *services.AuthService
	Registrations *services.RegistrationService
	Notifications *services.NotificationService
	Settings      *services.SettingsService
	Dashboard     *services.DashboardService
	Cleanup       *services.CleanupService
	Sheets        services.SheetsExporter
	SecureCookies bool
}

// InitAdminHandlers installs the services used by the admin handlers
func InitAdminHandlers(deps Deps) {
	authService = deps.Auth
	registrationService = deps.Registrations
	notificationService = deps.Notifications
	settingsService = deps.Settings
	dashboardService = deps.Dashboard
	cleanupService = deps.Cleanup
	sheetsExporter = deps.Sheets
	secureCookies = deps.SecureCookies
}
