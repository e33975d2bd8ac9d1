package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Engine.MaxConcurrentInvocations)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  max_concurrent_invocations: 4
  strict_idle_wait: true
store:
  driver: sqlite
  dsn: /tmp/flock.db
model:
  provider: anthropic
  name: claude-3-5-sonnet
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Engine.MaxConcurrentInvocations)
	assert.True(t, cfg.Engine.StrictIdleWait)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/flock.db", cfg.Store.DSN)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset fields keep their defaults.
	assert.Equal(t, 0.7, cfg.Model.Temperature)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "engine: [broken")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "sqlite"
	require.Error(t, cfg.Validate()) // sqlite without dsn

	cfg.Store.DSN = ":memory:"
	require.NoError(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Model.Provider = "llama"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Engine.MaxConcurrentInvocations = -1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())
}
