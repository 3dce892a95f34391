package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sim", cfg.Backend)
	assert.False(t, cfg.Pro)
	assert.Equal(t, 0, cfg.PreferredMode)
	assert.Equal(t, 20, cfg.BatchLimit)
	assert.Equal(t, 2048, cfg.OptimizeMaxDimension)
	assert.Equal(t, 0.5, cfg.Zoom.UltraWideFactor)
	assert.Equal(t, 1.0, cfg.Zoom.WideFactor)
	assert.Equal(t, 3.0, cfg.Zoom.TelephotoFactor)
	assert.Equal(t, 5.0, cfg.Zoom.TelephotoProFactor)
	assert.Equal(t, 50.0, cfg.Zoom.MacroImprovementMM)
	assert.NotEmpty(t, cfg.Zoom.ProModels)
}

func TestValidateClampsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchLimit = 0
	cfg.OptimizeMaxDimension = 10
	cfg.Zoom.WideFactor = -1
	cfg.Zoom.TelephotoFactor = 0
	cfg.PreferredMode = 7

	require.NoError(t, cfg.Validate())

	d := DefaultConfig()
	assert.Equal(t, d.BatchLimit, cfg.BatchLimit)
	assert.Equal(t, d.OptimizeMaxDimension, cfg.OptimizeMaxDimension)
	assert.Equal(t, d.Zoom.WideFactor, cfg.Zoom.WideFactor)
	assert.Equal(t, d.Zoom.TelephotoFactor, cfg.Zoom.TelephotoFactor)
	assert.Equal(t, 0, cfg.PreferredMode)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().BatchLimit, cfg.BatchLimit)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capturekit.json")

	cfg := DefaultConfig()
	cfg.Pro = true
	cfg.PreferredMode = 1
	cfg.BatchLimit = 5
	cfg.Zoom.TelephotoProFactor = 8.0
	cfg.PreviewAddr = "127.0.0.1:9090"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Pro)
	assert.Equal(t, 1, loaded.PreferredMode)
	assert.Equal(t, 5, loaded.BatchLimit)
	assert.Equal(t, 8.0, loaded.Zoom.TelephotoProFactor)
	assert.Equal(t, "127.0.0.1:9090", loaded.PreviewAddr)
}

func TestLoadMalformedFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg, err := Load(path)
	assert.Error(t, err)
	// Defaults still come back so the caller can proceed.
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().BatchLimit, cfg.BatchLimit)
}

func TestSetPreferredModePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capturekit.json")
	cfg := DefaultConfig()
	require.NoError(t, cfg.SaveTo(path))

	require.NoError(t, cfg.SetPreferredMode(1))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.PreferredMode)
}

func TestSetPreferredModeWithoutFile(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.SetPreferredMode(1))
	assert.Equal(t, 1, cfg.PreferredMode)
}

func TestSaveWithoutPathFails(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Save())
}
