package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/garciat/kinfer/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kinfer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, diag.ColorAuto, cfg.Color)
	assert.Empty(t, cfg.Stubs)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
workers: 3
color: never
debug: [unify]
stubs: [js.yaml]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Workers: 3,
		Color:   diag.ColorNever,
		Debug:   []string{"unify"},
		Stubs:   []string{"js.yaml"},
	}, cfg)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "workers: 3\n")
	t.Setenv("KINFER_WORKERS", "7")
	t.Setenv("KINFER_COLOR", "always")
	t.Setenv("KINFER_DEBUG", "resolve,checker")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, diag.ColorAlways, cfg.Color)
	assert.Equal(t, []string{"resolve", "checker"}, cfg.Debug)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
	t.Run("bad workers", func(t *testing.T) {
		t.Setenv("KINFER_WORKERS", "many")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "KINFER_WORKERS")
	})
	t.Run("bad color", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "color: rainbow\n"))
		assert.ErrorContains(t, err, "rainbow")
	})
	t.Run("zero workers", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "workers: 0\n"))
		assert.Error(t, err)
	})
}
