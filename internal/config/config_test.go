package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://citations:pw@localhost:5432/citations?sslmode=disable"
  max_open_conns: 40

redis:
  addr: "localhost:6379"

worker:
  drain_interval_seconds: 10
  drain_batch_size: 50
  max_attempts: 5

yext:
  api_key: "test-yext-key"
  account_id: "me"

bing:
  subscription_key: "test-bing-key"
  store_id: "store-1"

localeze:
  bucket: "citation-feeds"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Test database config
	assert.Equal(t, "postgres://citations:pw@localhost:5432/citations?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns) // default applied

	// Test worker config
	assert.Equal(t, 10*time.Second, cfg.Worker.DrainInterval())
	assert.Equal(t, 50, cfg.Worker.DrainBatchSize)
	assert.Equal(t, 5, cfg.Worker.MaxAttempts)

	// Test provider config
	assert.Equal(t, "test-yext-key", cfg.Yext.APIKey)
	assert.Equal(t, "me", cfg.Yext.AccountID)
	assert.Equal(t, "test-bing-key", cfg.Bing.SubscriptionKey)
	assert.Equal(t, "citation-feeds", cfg.Localeze.Bucket)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("server: {}\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Worker.DrainInterval())
	assert.Equal(t, 25, cfg.Worker.DrainBatchSize)
	assert.Equal(t, 3, cfg.Worker.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Worker.HTTPTimeout())
	assert.Equal(t, 3, cfg.Worker.HTTPMaxRetries)
	assert.Equal(t, "us-east-1", cfg.Localeze.Region)
	assert.Equal(t, "secret/citation-providers", cfg.Vault.SecretPath)
	assert.False(t, cfg.Vault.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
yext:
  api_key: "file-key"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://env@localhost/citations")
	t.Setenv("YEXT_API_KEY", "env-key")
	t.Setenv("VAULT_SECRET_PATH", "secret/custom-path")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://env@localhost/citations", cfg.Database.URL)
	assert.Equal(t, "env-key", cfg.Yext.APIKey)

	// Setting a vault path enables the vault resolver.
	assert.True(t, cfg.Vault.Enabled)
	assert.Equal(t, "secret/custom-path", cfg.Vault.SecretPath)
}
