// main.go - LAN Arena tournament site server
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lanarena/config"
	"lanarena/database"
	"lanarena/handlers"
	"lanarena/handlers/admin"
	"lanarena/middleware"
	"lanarena/realtime"
	"lanarena/services"
	"lanarena/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("FATAL: ", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer database.CloseDB()

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage: ", err)
	}

	broker, err := openBroker(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to start realtime broker: ", err)
	}
	defer broker.Close()

	signer := storage.NewSigner(cfg.JWTSecret, "/files")

	// Services
	registrations := services.NewRegistrationService(db, store, broker, services.RegistrationServiceConfig{
		Signer:         signer,
		SignedURLTTL:   cfg.SignedURLTTL,
		UploadMaxBytes: cfg.UploadMaxBytes,
	})
	notifications := services.NewNotificationService(db, broker, registrations)
	settings := services.NewSettingsService(db, broker, cfg.FallbackEventDate)
	auth := services.NewAuthService(db, cfg.JWTSecret, cfg.AdminSessionTTL)
	dashboard := services.NewDashboardService(registrations, notifications)
	cleanup := services.NewCleanupService(store, registrations, cfg.CleanupInterval, cfg.CleanupGrace)

	bell := services.NewBell(notifications, broker)
	if err := bell.Start(ctx); err != nil {
		log.Fatal("Failed to start notification bell: ", err)
	}

	var sheets services.SheetsExporter
	if cfg.SheetsEnabled() {
		client, err := services.NewSheetsClient(ctx, cfg.SheetsCredentials, cfg.SheetsSpreadsheetID)
		if err != nil {
			log.Printf("⚠️ Google Sheets export disabled: %v", err)
		} else {
			sheets = client
			log.Printf("📊 Google Sheets export enabled for spreadsheet %s", client.SpreadsheetID())
		}
	}

	if cfg.CleanupEnabled {
		cleanup.Start()
	}

	// Handlers
	middleware.InitAuth(auth)
	handlers.InitPublicHandlers(handlers.PublicDeps{
		Settings:      settings,
		Registrations: registrations,
		Bell:          bell,
		Broker:        broker,
		Store:         store,
		Signer:        signer,
	})
	admin.InitAdminHandlers(admin.Deps{
		Auth:          auth,
		Registrations: registrations,
		Notifications: notifications,
		Settings:      settings,
		Dashboard:     dashboard,
		Cleanup:       cleanup,
		Sheets:        sheets,
		SecureCookies: cfg.IsProduction(),
	})

	rl := newLimiters(cfg)
	stopPruning := make(chan struct{})
	if limiters := rl.all(); len(limiters) > 0 {
		middleware.StartPruning(stopPruning, 10*time.Minute, limiters...)
	}

	app := newApp(cfg, rl)

	go func() {
		log.Printf("🚀 HTTP server starting on port %s", cfg.Port)
		log.Printf("📊 Environment: %s", cfg.AppEnv)
		log.Printf("🗄️ Database: %s, storage: %s, realtime: %s", cfg.DBDriver, cfg.StorageDriver, brokerKind(cfg))
		log.Printf("🧹 Upload cleanup: %v", cfg.CleanupEnabled)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start HTTP server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🔄 Shutting down...")
	close(stopPruning)
	cleanup.Stop()
	bell.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("❌ HTTP shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "gcs":
		return storage.NewGCSStore(ctx, cfg.GCSCredentialsFile, cfg.StorageBucket)
	case "disk":
		return storage.NewDiskStore(cfg.StorageDir)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

func openBroker(ctx context.Context, cfg *config.Config) (realtime.Broker, error) {
	if cfg.RedisURL == "" {
		return realtime.NewMemoryBroker(), nil
	}
	return realtime.NewRedisBroker(ctx, cfg.RedisURL)
}

func brokerKind(cfg *config.Config) string {
	if cfg.RedisURL == "" {
		return "memory"
	}
	return "redis"
}
