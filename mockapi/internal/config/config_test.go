package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Auth.APIKey)
	assert.Equal(t, 10000, cfg.Generation.MaxBatchSize)
	assert.Zero(t, cfg.Generation.DefaultFaultRate)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	content := `
server:
  port: 9000
auth:
  api_key: sekrit
generation:
  max_batch_size: 500
  default_fault_rate: 0.15
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sekrit", cfg.Auth.APIKey)
	assert.Equal(t, 500, cfg.Generation.MaxBatchSize)
	assert.Equal(t, 0.15, cfg.Generation.DefaultFaultRate)

	// Unset values keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MOCKAPI_SERVER_PORT", "8099")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8099, cfg.Server.Port)
}
