package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
world:
  blocks_path: assets/blocks.json
  seed: 42
auth:
  in_memory: true
eventbus:
  in_memory: true
server:
  metrics_port: 9100
`
	assert.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "assets/blocks.json", cfg.World.BlocksPath)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.True(t, cfg.Auth.InMemory)
	assert.True(t, cfg.EventBus.InMemory)
	assert.Equal(t, 9100, cfg.Server.GetMetricsPort())
}

func TestLoadWithNoPathAndNoEnvReturnsNil(t *testing.T) {
	os.Unsetenv("WORLDCORE_CONFIG")
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestGetMetricsPortFallsBackToDefault(t *testing.T) {
	var s ServerConfig
	assert.Equal(t, 2112, s.GetMetricsPort())
}
