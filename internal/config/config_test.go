package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.HTTP.Port)
	assert.Equal(t, "mongodb://localhost:27017/ecommerce", cfg.MongoDB.URI)
	assert.Equal(t, "ecommerce", cfg.MongoDB.Database)
	assert.False(t, cfg.MongoDB.UseTransactions)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "storefront.events", cfg.NATS.Subject)
	assert.Equal(t, 64, cfg.Realtime.SendBuffer)
	assert.Equal(t, []string{"*"}, cfg.HTTP.Origins())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_USE_TRANSACTIONS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CATALOG_CACHE_TTL", "30s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.MongoDB.URI)
	assert.True(t, cfg.MongoDB.UseTransactions)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.Origins())
}

func TestLoadConfig_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTP.Port)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "http:\n  port: \"7000\"\nmongo:\n  database: shop\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.HTTP.Port)
	assert.Equal(t, "shop", cfg.MongoDB.Database)
}
