package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8480", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 800, cfg.LoginDelayMS)
	assert.Equal(t, 2000, cfg.ProviderDelayMS)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.True(t, cfg.SeedDemoData)
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:      "8480",
		Env:       "development",
		JWTSecret: "dev-secret",
	}

	t.Run("development accepts defaults", func(t *testing.T) {
		cfg := base
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := base
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative latency", func(t *testing.T) {
		cfg := base
		cfg.LoginDelayMS = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects demo seeding", func(t *testing.T) {
		cfg := base
		cfg.Env = "production"
		cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.DBPassword = "rea11y-strong-pass"
		cfg.SeedDemoData = true
		assert.Error(t, cfg.Validate())
	})
}
