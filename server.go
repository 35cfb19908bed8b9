// server.go - Fiber app and route table
package main

import (
	"path/filepath"
	"strings"
	"time"

	"lanarena/config"
	"lanarena/handlers"
	"lanarena/handlers/admin"
	"lanarena/middleware"
	"lanarena/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

// limiters groups the per-route rate limiters. A nil limiter is disabled.
type limiters struct {
	general  *middleware.RateLimiter
	auth     *middleware.RateLimiter
	register *middleware.RateLimiter
}

func newLimiters(cfg *config.Config) limiters {
	if !cfg.RateLimitEnabled {
		return limiters{}
	}
	return limiters{
		general:  middleware.NewRateLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindow),
		auth:     middleware.NewRateLimiter(cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow),
		register: middleware.NewRateLimiter(cfg.RegisterRateLimitMax, cfg.RegisterRateLimitWindow),
	}
}

func (l limiters) all() []*middleware.RateLimiter {
	var out []*middleware.RateLimiter
	for _, rl := range []*middleware.RateLimiter{l.general, l.auth, l.register} {
		if rl != nil {
			out = append(out, rl)
		}
	}
	return out
}

// newApp builds the fiber app. Handlers must be initialised before requests arrive.
func newApp(cfg *config.Config, rl limiters) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler(cfg.IsProduction(), cfg.UploadMaxBytes),
		// Form fields on top of the upload. Larger bodies never reach the
		// handler; the error handler answers them with the upload limit message.
		BodyLimit:    int(cfg.UploadMaxBytes) + 1024*1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins(), ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.RateLimit(rl.general, "Rate limit exceeded. Please try again later."))

	app.Get("/health", handlers.Health)

	// API Routes
	api := app.Group("/api")

	site := api.Group("/site")
	site.Get("/settings", handlers.GetSiteSettings)
	site.Get("/countdown", handlers.GetCountdown)

	api.Post("/registrations",
		middleware.RateLimit(rl.register, "Too many registrations from this address. Please try again later."),
		handlers.SubmitRegistration)
	api.Get("/notifications/latest", handlers.GetLatestNotifications)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login",
		middleware.RateLimit(rl.auth, "Too many login attempts. Please try again in a few minutes."),
		admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	// Protected admin routes
	adminProtected := adminGroup.Group("", middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/dashboard", admin.GetDashboard)

	adminProtected.Get("/registrations", admin.GetRegistrations)
	adminProtected.Post("/registrations", admin.CreateRegistration)
	adminProtected.Get("/registrations/export.csv", admin.ExportRegistrationsCSV)
	adminProtected.Post("/registrations/export/sheets", admin.ExportRegistrationsToSheets)
	adminProtected.Get("/registrations/:id", admin.GetRegistration)
	adminProtected.Patch("/registrations/:id/status", admin.UpdateRegistrationStatus)
	adminProtected.Delete("/registrations/:id", admin.DeleteRegistration)
	adminProtected.Get("/registrations/:id/college-id", admin.GetCollegeIDLink)
	adminProtected.Get("/registrations/:id/pass.png", admin.GetCheckInPass)

	adminProtected.Get("/notifications", admin.GetNotifications)
	adminProtected.Post("/notifications", admin.CreateNotification)
	adminProtected.Post("/notifications/:id/send", admin.SendNotification)
	adminProtected.Delete("/notifications/:id", admin.DeleteNotification)

	adminProtected.Get("/settings", admin.GetSettings)
	adminProtected.Put("/settings", admin.UpdateSettings)

	adminProtected.Post("/cleanup/manual", admin.ManualCleanup)
	adminProtected.Get("/cleanup/stats", admin.GetCleanupStats)

	// Signed college ID links
	app.Get("/files/*", handlers.ServeSignedFile)

	// Change feed
	app.Get("/ws/admin/:table",
		handlers.RequireUpgrade,
		middleware.AdminSocketAuthMiddleware,
		handlers.RequireKnownTable,
		websocket.New(handlers.AdminChangeFeed))
	app.Get("/ws/notifications", handlers.RequireUpgrade, websocket.New(handlers.NotificationFeed))

	// Admin HTML routes, guarded before the static catch-all
	adminDir := filepath.Join(cfg.StaticDir, "admin")
	app.Get("/admin/login", middleware.LoginPageGuard, serveFile(filepath.Join(adminDir, "login.html")))
	app.Use("/admin", middleware.AdminPageGuard)
	app.Get("/admin", serveFile(filepath.Join(adminDir, "index.html")))
	app.Static("/admin", adminDir)

	// Public pages
	for _, page := range []string{"about", "tournament", "schedule", "rules", "gallery", "contact", "register"} {
		app.Get("/"+page, serveFile(filepath.Join(cfg.StaticDir, page+".html")))
	}
	app.Static("/", cfg.StaticDir)

	return app
}

func serveFile(path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendFile(path)
	}
}

func customErrorHandler(production bool, uploadMaxBytes int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		// Only registration accepts bodies near the limit
		if code == fiber.StatusRequestEntityTooLarge {
			message = services.UploadLimitMessage(uploadMaxBytes)
		}

		// Don't expose internal errors in production
		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
