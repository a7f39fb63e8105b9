package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds process-wide settings. It is loaded once at startup and
// passed by value or pointer to collaborators; nothing mutates it afterwards.
type Config struct {
	DBDriver   string `env:"DB_DRIVER" env-default:"postgres"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"timetracker"`
	DBPassword string `env:"DB_PASSWORD" env-default:"timetracker"`
	DBName     string `env:"DB_NAME" env-default:"timetracker"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"timetracker.db"`

	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	GinMode  string `env:"GIN_MODE" env-default:"debug"`

	SecretKey      string        `env:"SECRET_KEY" env-default:"change-me-in-production"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"192h"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL" env-default:"24h"`

	SessionSecret string `env:"SESSION_SECRET" env-default:"default-secret-key-change-me"`
	SessionStore  string `env:"SESSION_STORE" env-default:"cookie"`
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`

	CORSOrigins string `env:"CORS_ORIGINS" env-default:"http://localhost:5173,http://localhost:5174"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	EmailsFromEmail string `env:"EMAILS_FROM_EMAIL"`
	EmailsFromName  string `env:"EMAILS_FROM_NAME" env-default:"TimeTracker"`
	FrontendURL     string `env:"FRONTEND_URL" env-default:"http://localhost:5173"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	LogFile  string `env:"LOG_FILE"`

	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" env-default:"20"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.SessionStore != "cookie" && cfg.SessionStore != "redis" {
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	return &cfg, nil
}

// AllowedOrigins splits CORSOrigins into a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// EmailsEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) EmailsEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != 0 && c.EmailsFromEmail != ""
}

// IsProduction is true when gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
