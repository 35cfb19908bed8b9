// database/db.go - Database Connection (PostgreSQL or SQLite)
package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"lanarena/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the configured database, tunes the pool and runs migrations
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	conn, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(conn, cfg); err != nil {
		return nil, err
	}

	db = conn
	return db, nil
}

// Open connects without migrating
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.DBDriver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		conn, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Printf("✅ %s database connected successfully", cfg.DBDriver)
	return conn, nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %v", err)
	}

	log.Println("Database connection closed")
	return nil
}
