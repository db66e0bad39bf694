package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.Rollout.TickInterval)
	assert.Zero(t, cfg.Rollout.CompletionWindow)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ROLLOUT_TICK_INTERVAL", "30s")
	t.Setenv("ROLLOUT_COMPLETION_WINDOW", "5m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Rollout.TickInterval)
	assert.Equal(t, 5*time.Minute, cfg.Rollout.CompletionWindow)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DB_PASSWORD")

	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("ROLLOUT_TICK_INTERVAL", "soon")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "ROLLOUT_TICK_INTERVAL")

	t.Setenv("ROLLOUT_TICK_INTERVAL", "0s")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "must be positive")

	t.Setenv("ROLLOUT_TICK_INTERVAL", "1m")
	t.Setenv("ENVIRONMENT", "production")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "at least 32 characters")
}

func TestMaskPassword(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "hunter2", DBName: "g", DBSSLMode: "disable"}
	masked := maskPassword(cfg.DSN())
	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "password=***** dbname=g")
}
