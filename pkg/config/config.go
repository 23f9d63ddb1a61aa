// Package config loads the YAML run configuration: logging, calibration,
// the preprocessing filter chain, and per-kind parameter overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"micrograph-analyzer/internal/analysis"
	"micrograph-analyzer/internal/filter"
)

// Config is the full run configuration. Zero values fall back to the
// defaults, so a partial file only overrides what it names.
type Config struct {
	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Calibration converts pixel measurements to physical units.
	Calibration analysis.Calibration `yaml:"calibration"`
	// Filters run in order before segmentation.
	Filters []filter.Spec `yaml:"filters"`
	// Parameters holds per-kind overrides keyed by analysis kind name.
	Parameters map[string]map[string]float64 `yaml:"parameters"`
}

// Default returns the built-in configuration: info logging, no
// calibration, an empty filter chain, and default analysis parameters.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the YAML layer cannot: the calibration scale
// and the filter names. Parameter overrides are validated later when they
// are applied to a registry. The log level is not checked here; unknown
// names fall back to info when the logger is built.
func (c *Config) Validate() error {
	known := make(map[string]bool)
	for _, name := range filter.Names() {
		known[name] = true
	}
	for _, spec := range c.Filters {
		if !known[spec.Name] {
			return fmt.Errorf("config: unknown filter %q", spec.Name)
		}
	}
	if c.Calibration.MicronsPerPixel < 0 {
		return fmt.Errorf("config: microns_per_pixel must not be negative, got %g",
			c.Calibration.MicronsPerPixel)
	}
	return nil
}

// Apply pushes the configured parameter overrides into the registry.
// The first rejected override aborts with its validation error.
func (c *Config) Apply(reg *analysis.Registry) error {
	for kind, overrides := range c.Parameters {
		if err := reg.Update(analysis.Kind(kind), analysis.Params(overrides)); err != nil {
			return err
		}
	}
	return nil
}
