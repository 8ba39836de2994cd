package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, ":9092", cfg.Server.KafkaAddr)
	assert.True(t, cfg.Topics.AutoCreate)
	assert.True(t, cfg.Retention.Enabled)
}

func TestLoadWithoutFileAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.KafkaAddr, cfg.Server.KafkaAddr)
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unclek.yaml")
	contents := `
server:
  kafka_addr: "0.0.0.0:19092"
storage:
  backend: badger
  data_dir: /var/lib/unclek
topics:
  auto_create: false
  declared:
    - name: orders
      compacted: true
      retention_ms: 3600000
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:19092", cfg.Server.KafkaAddr)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.False(t, cfg.Topics.AutoCreate)
	require.Len(t, cfg.Topics.Declared, 1)
	assert.Equal(t, "orders", cfg.Topics.Declared[0].Name)
	assert.True(t, cfg.Topics.Declared[0].Compacted)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/unclek.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnvOverridesFileAndDefaults(t *testing.T) {
	t.Setenv("UNCLEK_KAFKA_ADDR", "127.0.0.1:9999")
	t.Setenv("UNCLEK_STORAGE_BACKEND", "badger")
	t.Setenv("UNCLEK_LOG_LEVEL", "debug")

	dir := t.TempDir()
	path := filepath.Join(dir, "unclek.yaml")
	contents := `
server:
  kafka_addr: "0.0.0.0:19092"
storage:
  backend: sqlite
logging:
  level: info
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.KafkaAddr)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
