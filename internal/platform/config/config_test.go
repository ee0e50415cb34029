package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "header", cfg.Auth.Mode)
	assert.Equal(t, "user-name", cfg.Auth.Header)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHANNELLING_HTTP__ADDR", ":9090")
	t.Setenv("CHANNELLING_STORE__DRIVER", "sqlite")
	t.Setenv("CHANNELLING_STORE__DSN", "file:test.db")
	t.Setenv("CHANNELLING_REDIS__TTL", "30s")
	t.Setenv("CHANNELLING_KAFKA__BROKERS", "k1:9092, k2:9092")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "file:test.db", cfg.Store.DSN)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":7070"
log:
  level: debug
  format: text
`), 0o600))
	t.Setenv("CHANNELLING_LOG__LEVEL", "warn")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "env wins over file")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("unknown store driver", func(t *testing.T) {
		t.Setenv("CHANNELLING_STORE__DRIVER", "oracle")
		_, err := load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Driver")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("CHANNELLING_STORE__DRIVER", "postgres")
		_, err := load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DSN")
	})

	t.Run("jwt without signing key", func(t *testing.T) {
		t.Setenv("CHANNELLING_AUTH__MODE", "jwt")
		_, err := load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWTSigningKey")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
