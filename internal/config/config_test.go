package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppConfigDefaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SECRET_KEY", "")

	cfg, err := GetAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "./local-data/cafes.db", cfg.DBPath)
	assert.Equal(t, "config.yaml", cfg.ConfigPath)
	assert.Error(t, cfg.RequireSecret())
}

func TestGetAppConfigFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("SECRET_KEY", "shh")
	t.Setenv("ADDR", ":9000")

	cfg, err := GetAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.NoError(t, cfg.RequireSecret())
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SECRET_KEY=from-dotenv\n"), 0o600))

	// godotenv never overrides variables that are already set, even empty ones.
	require.NoError(t, os.Unsetenv("SECRET_KEY"))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("SECRET_KEY"))
}

func TestLoadServerConfig(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":3000\"\nwrite_timeout: 30s\ncsrf_ttl: 1h\n"), 0o600))

	cfg, err = LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, time.Hour, cfg.CSRFTTL)
}

func TestLoadServerConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated\n"), 0o600))
	_, err := LoadServerConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("csrf_ttl: 0s\n"), 0o600))
	_, err = LoadServerConfig(path)
	assert.Error(t, err)
}
