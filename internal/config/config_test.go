package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Port:             "8420",
		Env:              "development",
		StorageDriver:    "sqlite",
		StoragePath:      "quantum.db",
		SearchDebounceMS: 300,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	t.Run("missing port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.StorageDriver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		cfg := validConfig()
		cfg.StoragePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("debounce must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.SearchDebounceMS = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("provider token needs a secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.ProviderToken = "token"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects default db password", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.StorageDriver = "postgres"
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})
}
