package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "admin", cfg.AdminAccount)
	assert.Equal(t, "counters", cfg.RegistryModule)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 64, cfg.MaxEventsPerCall)
	assert.Equal(t, 512, cfg.MaxEventSize)
	assert.Equal(t, ">= 1.0.0, < 2.0.0", cfg.SupportedVersions)
	assert.Empty(t, cfg.OTelEndpoint)
	assert.Zero(t, cfg.RedisMaxEvents)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VLM_STORAGE", "sql")
	t.Setenv("VLM_SQL_DIALECT", "postgres")
	t.Setenv("VLM_SESSION_DURATION", "90m")
	t.Setenv("VLM_MAX_EVENTS_PER_CALL", "8")
	t.Setenv("VLM_REDIS_MAX_EVENTS", "1000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Storage)
	assert.Equal(t, "postgres", cfg.SQLDialect)
	assert.Equal(t, 90*time.Minute, cfg.SessionDuration)
	assert.Equal(t, 8, cfg.MaxEventsPerCall)
	assert.Equal(t, int64(1000), cfg.RedisMaxEvents)
}

func TestLoadErrors(t *testing.T) {
	t.Run("not a number", func(t *testing.T) {
		t.Setenv("VLM_HTTP_PORT", "not-an-int")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})
	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("VLM_HTTP_PORT", "70000")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Config{LogLevel: in}.SlogLevel(), in)
	}
}
