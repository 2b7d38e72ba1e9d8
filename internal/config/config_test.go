package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "identity-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())

	assert.Equal(t, 5, cfg.Mongo.ConnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ConnectRetryDelay())
	assert.Equal(t, "identity", cfg.Mongo.Database)

	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	// the fallback secret must exist but is flagged as insecure
	assert.True(t, cfg.Auth.IsInsecureSecret())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "real-secret-from-env")
	t.Setenv("MONGO_CONNECT_ATTEMPTS", "2")
	t.Setenv("MONGO_CONNECT_RETRY_DELAY_SECONDS", "1")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Auth.IsInsecureSecret())
	assert.Equal(t, 2, cfg.Mongo.ConnectAttempts)
	assert.Equal(t, time.Second, cfg.Mongo.ConnectRetryDelay())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadIgnoresUnparsableInts(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}
