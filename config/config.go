// config/config.go - Environment configuration
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"3000"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"lanarena"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/lanarena.db"`

	JWTSecret       string        `env:"JWT_SECRET"`
	AdminSessionTTL time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"12h"`
	AdminUsername   string        `env:"ADMIN_USERNAME"`
	AdminPassword   string        `env:"ADMIN_PASSWORD"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"./static"`

	StorageDriver      string        `env:"STORAGE_DRIVER" envDefault:"disk"`
	StorageDir         string        `env:"STORAGE_DIR" envDefault:"./data/uploads"`
	StorageBucket      string        `env:"STORAGE_BUCKET" envDefault:"college-ids"`
	GCSCredentialsFile string        `env:"GCS_CREDENTIALS_FILE"`
	UploadMaxBytes     int64         `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	SignedURLTTL       time.Duration `env:"SIGNED_URL_TTL" envDefault:"10m"`

	RedisURL string `env:"REDIS_URL"`

	SheetsSpreadsheetID string `env:"GOOGLE_SHEETS_SPREADSHEET_ID"`
	SheetsCredentials   string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	CleanupEnabled  bool          `env:"CLEANUP_ENABLED" envDefault:"true"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	CleanupGrace    time.Duration `env:"CLEANUP_GRACE" envDefault:"24h"`

	RateLimitEnabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMaxRequests    int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitWindow         time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	AuthRateLimitMax        int           `env:"AUTH_RATE_LIMIT_MAX" envDefault:"5"`
	AuthRateLimitWindow     time.Duration `env:"AUTH_RATE_LIMIT_WINDOW" envDefault:"5m"`
	RegisterRateLimitMax    int           `env:"REGISTER_RATE_LIMIT_MAX" envDefault:"10"`
	RegisterRateLimitWindow time.Duration `env:"REGISTER_RATE_LIMIT_WINDOW" envDefault:"1h"`

	FallbackEventDate time.Time `env:"FALLBACK_EVENT_DATE" envDefault:"2025-03-15T10:00:00Z"`
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}

	switch c.StorageDriver {
	case "disk":
		if c.StorageDir == "" {
			return errors.New("STORAGE_DIR is required for the disk storage driver")
		}
	case "gcs":
		if c.GCSCredentialsFile == "" {
			return errors.New("GCS_CREDENTIALS_FILE is required for the gcs storage driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (want disk or gcs)", c.StorageDriver)
	}
	if c.StorageBucket == "" {
		return errors.New("STORAGE_BUCKET must not be empty")
	}

	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.AdminSessionTTL <= 0 {
		return errors.New("ADMIN_SESSION_TTL must be positive")
	}
	for _, o := range c.AllowedOrigins() {
		if o == "*" {
			return errors.New("CORS_ORIGINS must list origins explicitly; admin sessions travel in cookies")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresDSN builds a DSN from DATABASE_URL or the individual DB_* pieces.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// AllowedOrigins splits CORS_ORIGINS into a trimmed list
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsCredentials != ""
}
