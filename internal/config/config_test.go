package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 0, cfg.Planner.Workers)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  addr: ":9090"
planner:
  workers: 4
  solveTimeout: 30s
solver:
  maxCells: 1048576
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Planner.Workers)
	assert.Equal(t, 30*time.Second, cfg.Planner.SolveTimeout)
	assert.Equal(t, 1048576, cfg.Solver.MaxCells)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Defaults still applied for unset keys.
	assert.Equal(t, int64(16<<20), cfg.Server.MaxUploadBytes)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"server": {"addr": ":7070"}, "logging": {"level": "warn"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  addr: ":9090"
`)
	t.Setenv("SLITPLAN_SERVER__ADDR", ":6060")
	t.Setenv("SLITPLAN_LOGGING__LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "addr = ':9090'")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsNegativeWorkers(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
planner:
  workers: -1
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logging:
  level: verbose
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoggingConfigValidate(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		c := LoggingConfig{Level: level}
		assert.NoError(t, c.Validate(), level)
	}
	c := LoggingConfig{Level: "trace"}
	assert.Error(t, c.Validate())
}
