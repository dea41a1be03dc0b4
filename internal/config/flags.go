package config

import (
	"flag"

	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/pkg/formats"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagBackend = flag.String("backend", "", "Export backend: usd or gltf")
	flagFormat  = flag.String("format", "", "Requested document encoding: binary (usdc) or ascii (usda, text)")
	flagEmbed   = flag.Bool("embed-textures", false, "Embed the texture in the document when the backend can")
	flagOutline = flag.Bool("outline", false, "Add the emissive border around the picture")
	flagAnchor  = flag.String("anchor", "", "Origin placement: center or bottom")
	flagLogFile = flag.String("log-file", "", "Also write JSON logs to this file")

	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path (.yaml or .toml) and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the -write-config destination, empty when unset.
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBackend != "" {
		cfg.Export.Backend = *flagBackend
	}
	if *flagFormat != "" {
		enc, err := formats.ParseEncoding(*flagFormat)
		if err != nil {
			return err
		}
		cfg.Export.Policy.Format = enc
	}
	if *flagEmbed {
		cfg.Export.Policy.EmbedTextures = true
	}
	if *flagOutline {
		cfg.Geometry.Outline.Enabled = true
	}
	if *flagAnchor != "" {
		cfg.Geometry.Anchor = geometry.Anchor(*flagAnchor)
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	return nil
}
