package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 50, cfg.LogListDefaultLimit)
	require.Equal(t, 500, cfg.LogListMaxLimit)
	require.True(t, cfg.AutoMigrate)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9090\nSTORE_DRIVER=Postgres\nDATABASE_URL=postgres://u:p@localhost:5432/db\nLOG_LIST_DEFAULT_LIMIT=10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, StorePostgres, cfg.StoreDriver)
	require.Equal(t, 10, cfg.LogListDefaultLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\n"), 0o600))
	t.Setenv("PORT", "7070")

	cfg, err := load(path)
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Port)
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreDriver:         StoreMemory,
		RequestTimeout:      time.Second,
		LogListDefaultLimit: 50,
		LogListMaxLimit:     500,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"postgres without url": func(c *Config) { c.StoreDriver = StorePostgres },
		"unknown driver":       func(c *Config) { c.StoreDriver = "mongo" },
		"zero default limit":   func(c *Config) { c.LogListDefaultLimit = 0 },
		"max below default":    func(c *Config) { c.LogListMaxLimit = 10 },
		"zero timeout":         func(c *Config) { c.RequestTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
