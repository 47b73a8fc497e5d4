package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1000, cfg.Document.Width)
	assert.Equal(t, 0, cfg.Document.HistoryLimit)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "inkdoc.toml", `
[server]
addr = ":9000"

[document]
width = 800
height = 600
history_limit = 50

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 800, cfg.Document.Width)
	assert.Equal(t, 50, cfg.Document.HistoryLimit)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched sections keep defaults
	assert.Equal(t, Default().Storage.Path, cfg.Storage.Path)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "inkdoc.yaml", `
storage:
  path: /tmp/ink.db
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ink.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INKDOC_ADDR", ":7000")
	t.Setenv("INKDOC_HISTORY_LIMIT", "10")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Document.HistoryLimit)

	t.Setenv("INKDOC_HISTORY_LIMIT", "ten")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	cfg := Default()
	cfg.Document.Width = 0
	cfg.Document.HistoryLimit = -1
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document size")
	assert.Contains(t, err.Error(), "history_limit")
	assert.Contains(t, err.Error(), "logging.format")

	_, err = Load(writeFile(t, "inkdoc.ini", "x=1"))
	require.Error(t, err)
}
