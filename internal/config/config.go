package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server's environment configuration
type Config struct {
	HTTPHost string `env:"VLM_HTTP_HOST"`
	HTTPPort int    `env:"VLM_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"VLM_LOG_LEVEL" envDefault:"info"`

	// Storage is one of memory, redis or sql
	Storage    string `env:"VLM_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"VLM_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLDialect string `env:"VLM_SQL_DIALECT" envDefault:"sqlite"`
	SQLDSN     string `env:"VLM_SQL_DSN" envDefault:"versusleague.db"`

	// RedisMaxEvents caps each contract's event list on redis. Zero keeps everything.
	RedisMaxEvents int64 `env:"VLM_REDIS_MAX_EVENTS" envDefault:"0"`

	// AdminAccount becomes the admin when the registry is first created
	AdminAccount string `env:"VLM_ADMIN_ACCOUNT" envDefault:"admin"`
	// RegistryModule is the module a new registry starts on: counters or outcomes
	RegistryModule string `env:"VLM_REGISTRY_MODULE" envDefault:"counters"`

	AuthSecret      string        `env:"VLM_AUTH_SECRET"`
	SessionDuration time.Duration `env:"VLM_SESSION_DURATION" envDefault:"24h"`

	MaxEventsPerCall  int    `env:"VLM_MAX_EVENTS_PER_CALL" envDefault:"64"`
	MaxEventSize      int    `env:"VLM_MAX_EVENT_SIZE" envDefault:"512"`
	SupportedVersions string `env:"VLM_SUPPORTED_VERSIONS" envDefault:">= 1.0.0, < 2.0.0"`

	OTelEndpoint string `env:"VLM_OTEL_ENDPOINT"`
	ServiceName  string `env:"VLM_SERVICE_NAME" envDefault:"versusleague"`
}

// Load reads Config from the environment
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("VLM_HTTP_PORT out of range: %d", cfg.HTTPPort)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exitf writes a formatted error message to stderr and exits with code 1
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
