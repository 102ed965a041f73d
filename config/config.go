// Package config loads application configuration from the environment.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Session backends.
const (
	SessionBackendFile     = "file"
	SessionBackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Telegram Bot
	Telegram TelegramConfig

	// Schools.by portal
	Schools SchoolsConfig

	// Session storage
	Session SessionConfig

	// PostgreSQL (used when Session.Backend is "postgres")
	Postgres PostgresConfig

	// Redis daybook cache
	Redis RedisConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// TelegramConfig holds Telegram Bot settings.
type TelegramConfig struct {
	// Bot token from @BotFather
	Token string

	// AdminChatID enables /broadcast for this chat. Zero disables it.
	AdminChatID int64

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int
}

// SchoolsConfig holds schools.by portal settings.
type SchoolsConfig struct {
	// BaseURL is the school's portal root,
	// e.g. https://gymn1.schools.by.
	BaseURL string

	// Timeout for portal HTTP requests.
	Timeout time.Duration
}

// SessionConfig holds session storage settings.
type SessionConfig struct {
	// Backend selects the store: "file" or "postgres".
	Backend string

	// FilePath is the session file location for the file backend.
	FilePath string

	// FileSealKey is an optional 64-char hex key. When set, the session
	// file is encrypted at rest.
	FileSealKey string
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	// URL is the full connection string. When set it wins over the
	// individual fields.
	URL string

	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	MaxConns int32
	MinConns int32
}

// RedisConfig holds Redis daybook-cache settings.
type RedisConfig struct {
	// Enabled turns the read-through daybook cache on.
	Enabled bool

	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "daybook-bot"),
			Environment:     Environment(getEnv("APP_ENV", string(EnvDevelopment))),
			Debug:           getEnvBool("APP_DEBUG", false),
			ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Telegram: TelegramConfig{
			Token:                getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID:          getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
			MaxConcurrentUpdates: getEnvInt("TELEGRAM_MAX_CONCURRENT_UPDATES", 100),
		},
		Schools: SchoolsConfig{
			BaseURL: getEnv("SCHOOLS_BASE_URL", ""),
			Timeout: getEnvDuration("SCHOOLS_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Backend:     getEnv("SESSION_BACKEND", SessionBackendFile),
			FilePath:    getEnv("SESSION_FILE_PATH", "sessions.json"),
			FileSealKey: getEnv("SESSION_FILE_KEY", ""),
		},
		Postgres: PostgresConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			Database: getEnv("POSTGRES_DB", "daybook"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("POSTGRES_MAX_CONNS", 5)),
			MinConns: int32(getEnvInt("POSTGRES_MIN_CONNS", 1)),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.Token == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.Schools.BaseURL == "" {
		errs = append(errs, "SCHOOLS_BASE_URL is required")
	} else if !strings.HasPrefix(c.Schools.BaseURL, "http://") && !strings.HasPrefix(c.Schools.BaseURL, "https://") {
		errs = append(errs, "SCHOOLS_BASE_URL must be an http(s) URL")
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.FilePath == "" {
			errs = append(errs, "SESSION_FILE_PATH is required for the file backend")
		}
	case SessionBackendPostgres:
		if c.Postgres.URL == "" && c.Postgres.Password == "" && c.App.Environment == EnvProduction {
			errs = append(errs, "DATABASE_URL or POSTGRES_PASSWORD is required in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("SESSION_BACKEND must be %q or %q", SessionBackendFile, SessionBackendPostgres))
	}

	if c.Session.FileSealKey != "" {
		if raw, err := hex.DecodeString(c.Session.FileSealKey); err != nil || len(raw) != 32 {
			errs = append(errs, "SESSION_FILE_KEY must be 64 hex characters")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// ══════════════════════════════════════════════════════════════════════════════
// ENV HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
