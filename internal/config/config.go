// Package config handles arframe configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/export"
	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/material"
	"github.com/Faultbox/arframe/pkg/formats"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all pipeline settings.
type Config struct {
	Geometry GeometryConfig   `yaml:"geometry" toml:"geometry"`
	Material material.Options `yaml:"material" toml:"material"`
	Export   ExportConfig     `yaml:"export" toml:"export"`
	Logging  LoggingConfig    `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

// GeometryConfig holds mesh construction settings.
type GeometryConfig struct {
	Anchor  geometry.Anchor `yaml:"anchor" toml:"anchor"`
	Outline OutlineConfig   `yaml:"outline" toml:"outline"`
}

// OutlineConfig holds the emissive border settings.
type OutlineConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	WidthM  float64 `yaml:"width_m" toml:"width_m"`
	OffsetM float64 `yaml:"offset_m" toml:"offset_m"`
}

// Options converts to geometry outline options.
func (o OutlineConfig) Options() geometry.OutlineOptions {
	return geometry.OutlineOptions{WidthM: o.WidthM, OffsetM: o.OffsetM}
}

// ExportConfig holds backend selection and the desired export policy.
type ExportConfig struct {
	Backend string            `yaml:"backend" toml:"backend"`
	USDCat  string            `yaml:"usdcat" toml:"usdcat"`
	Policy  capability.Policy `yaml:"policy" toml:"policy"`
}

// BackendOptions returns the options passed to export.Lookup.
func (e ExportConfig) BackendOptions() export.Options {
	return export.Options{USDCat: e.USDCat}
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// MetricsConfig holds batch metrics settings.
type MetricsConfig struct {
	// Textfile is where run metrics are written in Prometheus text format,
	// typically a node-exporter textfile collector directory. Empty disables.
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	outline := geometry.DefaultOutlineOptions()
	return &Config{
		Geometry: GeometryConfig{
			Anchor: geometry.AnchorCenter,
			Outline: OutlineConfig{
				Enabled: false,
				WidthM:  outline.WidthM,
				OffsetM: outline.OffsetM,
			},
		},
		Material: material.DefaultOptions(),
		Export: ExportConfig{
			Backend: "usd",
			Policy:  capability.DefaultPolicy(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values a file or flag may have set.
func (c *Config) Validate() error {
	switch c.Geometry.Anchor {
	case geometry.AnchorCenter, geometry.AnchorBottom:
	default:
		return fmt.Errorf("%w: geometry.anchor %q (want center or bottom)", ErrInvalidConfig, c.Geometry.Anchor)
	}
	if c.Export.Backend == "" {
		return fmt.Errorf("%w: export.backend is empty", ErrInvalidConfig)
	}
	if c.Export.Policy.Format == formats.EncodingUnknown {
		return fmt.Errorf("%w: export.policy.format is not set", ErrInvalidConfig)
	}
	if err := c.Material.Validate(); err != nil {
		return fmt.Errorf("%w: material: %v", ErrInvalidConfig, err)
	}
	return nil
}
