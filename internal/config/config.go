// Package config loads the optional TOML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the config file or a field is absent.
const (
	DefaultSampleInterval  = 20 * time.Millisecond
	DefaultSaveInterval    = time.Minute
	DefaultDisplayInterval = 5 * time.Second
)

// Config is the resolved runtime configuration.
type Config struct {
	// SampleInterval is the pointer polling cadence.
	SampleInterval time.Duration
	// SaveInterval is the periodic state snapshot cadence.
	SaveInterval time.Duration
	// DisplayInterval is the display topology re-check cadence.
	DisplayInterval time.Duration
	// PPI overrides the physical density of all displays (pixels per
	// inch). Zero means unknown; the calibration fallback applies.
	PPI float64
	// DatabasePath is the SQLite history database location.
	DatabasePath string
	// StatePath overrides the state file location. Empty means next to
	// the executable.
	StatePath string
}

// fileConfig maps the TOML file. Pointer fields distinguish absent from
// zero.
type fileConfig struct {
	Tracking trackingConfig `toml:"tracking"`
	Display  displayConfig  `toml:"display"`
	Storage  storageConfig  `toml:"storage"`
}

type trackingConfig struct {
	SampleInterval *string `toml:"sample-interval"`
	SaveInterval   *string `toml:"save-interval"`
}

type displayConfig struct {
	PollInterval *string  `toml:"poll-interval"`
	PPI          *float64 `toml:"ppi"`
}

type storageConfig struct {
	DatabasePath *string `toml:"database"`
	StatePath    *string `toml:"state-file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleInterval:  DefaultSampleInterval,
		SaveInterval:    DefaultSaveInterval,
		DisplayInterval: DefaultDisplayInterval,
		DatabasePath:    DefaultDBPath(),
	}
}

// Load reads the TOML config at path and merges it over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to stat config: %w", err)
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.SampleInterval = mergeDuration(fc.Tracking.SampleInterval, cfg.SampleInterval)
	cfg.SaveInterval = mergeDuration(fc.Tracking.SaveInterval, cfg.SaveInterval)
	cfg.DisplayInterval = mergeDuration(fc.Display.PollInterval, cfg.DisplayInterval)
	if fc.Display.PPI != nil && *fc.Display.PPI > 0 {
		cfg.PPI = *fc.Display.PPI
	}
	if fc.Storage.DatabasePath != nil && *fc.Storage.DatabasePath != "" {
		cfg.DatabasePath = *fc.Storage.DatabasePath
	}
	if fc.Storage.StatePath != nil && *fc.Storage.StatePath != "" {
		cfg.StatePath = *fc.Storage.StatePath
	}
	return cfg, nil
}

// mergeDuration parses an optional duration string, keeping the default
// when absent, empty, unparsable, or non-positive.
func mergeDuration(raw *string, def time.Duration) time.Duration {
	if raw == nil || *raw == "" {
		return def
	}
	d, err := time.ParseDuration(*raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
