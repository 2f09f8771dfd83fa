package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./temp_sets", cfg.TempSetPath)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 1200, cfg.ImageWidth)
	assert.Equal(t, "jet", cfg.Colormap)
	assert.Equal(t, 16, cfg.ProjectionCacheSize)
	assert.Empty(t, cfg.MetricsFile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("METEOVIS_TEMP_SET_PATH", "/var/lib/meteovis")
	t.Setenv("METEOVIS_WORKERS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("METEOVIS_IMAGE_WIDTH", "800")
	t.Setenv("METEOVIS_COLORMAP", "Gray")
	t.Setenv("METEOVIS_PROJECTION_CACHE_SIZE", "0")
	t.Setenv("METEOVIS_METRICS_FILE", "/tmp/meteovis.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/meteovis", cfg.TempSetPath)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 800, cfg.ImageWidth)
	assert.Equal(t, "gray", cfg.Colormap)
	assert.Equal(t, 0, cfg.ProjectionCacheSize)
	assert.Equal(t, "/tmp/meteovis.prom", cfg.MetricsFile)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("METEOVIS_WORKERS", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METEOVIS_WORKERS")
}

func TestLoad_NonNumericWidth(t *testing.T) {
	t.Setenv("METEOVIS_IMAGE_WIDTH", "wide")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METEOVIS_IMAGE_WIDTH")
}

func TestLoad_WidthTooLarge(t *testing.T) {
	t.Setenv("METEOVIS_IMAGE_WIDTH", "99999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METEOVIS_IMAGE_WIDTH")
}

func TestLoad_NegativeCacheSize(t *testing.T) {
	t.Setenv("METEOVIS_PROJECTION_CACHE_SIZE", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METEOVIS_PROJECTION_CACHE_SIZE")
}

func TestLoad_UnknownColormap(t *testing.T) {
	t.Setenv("METEOVIS_COLORMAP", "rainbow")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METEOVIS_COLORMAP")
}
