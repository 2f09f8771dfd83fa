package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	// TempSetPath is the directory under which run directories are created.
	TempSetPath string
	Workers     int
	LogLevel    string
	LogFormat   string

	// Rendering configuration.
	ImageWidth int
	Colormap   string

	ProjectionCacheSize int

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string
}

// knownColormaps mirrors the colormaps the raster package can render.
var knownColormaps = map[string]bool{"jet": true, "gray": true}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	workers, err := positiveInt("METEOVIS_WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	width, err := positiveInt("METEOVIS_IMAGE_WIDTH", 1200)
	if err != nil {
		return nil, err
	}
	if width > 16384 {
		return nil, fmt.Errorf("invalid METEOVIS_IMAGE_WIDTH: %d exceeds 16384", width)
	}

	cacheSize, err := nonNegativeInt("METEOVIS_PROJECTION_CACHE_SIZE", 16)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TempSetPath:         sharedcfg.EnvOrDefault("METEOVIS_TEMP_SET_PATH", "./temp_sets"),
		Workers:             workers,
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ImageWidth:          width,
		Colormap:            strings.ToLower(sharedcfg.EnvOrDefault("METEOVIS_COLORMAP", "jet")),
		ProjectionCacheSize: cacheSize,
		MetricsFile:         os.Getenv("METEOVIS_METRICS_FILE"),
	}

	if cfg.TempSetPath == "" {
		return nil, fmt.Errorf("METEOVIS_TEMP_SET_PATH is required")
	}
	if !knownColormaps[cfg.Colormap] {
		return nil, fmt.Errorf("invalid METEOVIS_COLORMAP: unknown colormap %q", cfg.Colormap)
	}

	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	n, err := intOrDefault(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}

func nonNegativeInt(key string, def int) (int, error) {
	n, err := intOrDefault(key, def)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return n, nil
}

func intOrDefault(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
