// database/migrate.go - Database Migration Runner
package database

import (
	"errors"
	"fmt"
	"log"

	"lanarena/config"
	"lanarena/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunMigrations creates the tables, indexes and seed rows
func RunMigrations(db *gorm.DB, cfg *config.Config) error {
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.Registration{},
		&models.Notification{},
		&models.SiteSettings{},
		&models.AdminUser{},
	); err != nil {
		return fmt.Errorf("❌ failed to run migrations: %w", err)
	}

	createIndexes(db)

	if err := seedSiteSettings(db); err != nil {
		return err
	}
	if cfg != nil && cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	}

	log.Println("✅ All migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) {
	db.Exec("CREATE INDEX IF NOT EXISTS idx_registrations_created ON registrations(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_registrations_college_id ON registrations(college_id_url)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at DESC)")
}

func seedSiteSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SiteSettings{}).Where("id = ?", models.MainSettingsID).Count(&count).Error; err != nil {
		return fmt.Errorf("check site settings: %w", err)
	}
	if count > 0 {
		return nil
	}

	settings := models.DefaultSiteSettings()
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}
	log.Println("✅ Seeded default site settings")
	return nil
}

// EnsureAdmin creates the admin account when no admin with that username exists.
// An existing account keeps its password.
func EnsureAdmin(db *gorm.DB, username, password string) error {
	var existing models.AdminUser
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.AdminUser{Username: username, PasswordHash: string(hash)}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("✅ Created admin account %q", username)
	return nil
}
