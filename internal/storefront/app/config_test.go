package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("file then environment", func(t *testing.T) {
		path := writeConfig(t, `
env: dev
locale: en
api:
  baseURL: https://localhost:7207/api
  timeout: 3s
store:
  driver: redis
  redisAddr: localhost:6379
`)

		cfg, err := LoadConfig(path, []string{
			"STOREFRONT_API_TIMEOUT=15s",
			"STOREFRONT_STORE_REDISADDR=cache:6379",
			"STOREFRONT_LOG_LEVEL=debug",
			"STOREFRONT_CONFIG=" + path,
			"HOME=/root",
		})
		require.NoError(t, err)

		require.Equal(t, "dev", cfg.Env)
		require.Equal(t, "en", cfg.Locale)
		require.Equal(t, "https://localhost:7207/api", cfg.API.BaseURL)
		require.Equal(t, 15*time.Second, cfg.API.Timeout)
		require.Equal(t, "redis", cfg.Store.Driver)
		require.Equal(t, "cache:6379", cfg.Store.RedisAddr)
		require.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("environment only with defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", []string{"STOREFRONT_API_BASEURL=http://api.test"})
		require.NoError(t, err)

		require.Equal(t, "http://api.test", cfg.API.BaseURL)
		require.Equal(t, "prod", cfg.Env)
		require.Equal(t, "es", cfg.Locale)
		require.Equal(t, "info", cfg.Log.Level)
		require.Equal(t, "text", cfg.Log.Format)
		require.Equal(t, 10*time.Second, cfg.API.Timeout)
		require.Equal(t, "file", cfg.Store.Driver)
		require.Equal(t, "session.json", filepath.Base(cfg.Store.Path))
	})

	t.Run("sqlite default path", func(t *testing.T) {
		cfg, err := LoadConfig("", []string{
			"STOREFRONT_API_BASEURL=http://api.test",
			"STOREFRONT_STORE_DRIVER=sqlite",
		})
		require.NoError(t, err)
		require.Equal(t, "session.db", filepath.Base(cfg.Store.Path))
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, err := LoadConfig("", nil)
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("redis needs an address", func(t *testing.T) {
		_, err := LoadConfig("", []string{
			"STOREFRONT_API_BASEURL=http://api.test",
			"STOREFRONT_STORE_DRIVER=redis",
		})
		require.ErrorContains(t, err, "RedisAddr")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := LoadConfig("", []string{
			"STOREFRONT_API_BASEURL=http://api.test",
			"STOREFRONT_STORE_DRIVER=etcd",
		})
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.ErrorContains(t, err, "read config")
	})
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	env := []string{"STOREFRONT_CONFIG=/etc/storefront.yaml"}
	require.Equal(t, "flag.yaml", ConfigPath("flag.yaml", env))
	require.Equal(t, "/etc/storefront.yaml", ConfigPath("", env))
	require.Empty(t, ConfigPath("", nil))
}

func TestCanonicalizeEnvKey(t *testing.T) {
	t.Parallel()

	existing := map[string]any{
		"api":   map[string]any{"baseURL": "x", "rateLimit": 1},
		"store": map[string]any{"redisAddr": "y"},
	}

	require.Equal(t, "api.baseURL", canonicalizeEnvKey("API_BASEURL", existing))
	require.Equal(t, "store.redisAddr", canonicalizeEnvKey("STORE_REDISADDR", existing))
	require.Equal(t, "log.level", canonicalizeEnvKey("LOG_LEVEL", existing))
	require.Equal(t, "api.ratelimit", canonicalizeEnvKey("API_RATELIMIT", nil))
}
