package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/pkg/formats"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test geometry defaults
	if cfg.Geometry.Anchor != geometry.AnchorCenter {
		t.Errorf("expected anchor center, got %s", cfg.Geometry.Anchor)
	}
	if cfg.Geometry.Outline.Enabled {
		t.Error("expected outline to be disabled by default")
	}
	if cfg.Geometry.Outline.WidthM != 0.006 {
		t.Errorf("expected outline width 0.006, got %f", cfg.Geometry.Outline.WidthM)
	}

	// Test material defaults
	if cfg.Material.EmissionStrength != 0.6 {
		t.Errorf("expected emission 0.6, got %f", cfg.Material.EmissionStrength)
	}
	if cfg.Material.Roughness != 0.35 {
		t.Errorf("expected roughness 0.35, got %f", cfg.Material.Roughness)
	}

	// Test export defaults
	if cfg.Export.Backend != "usd" {
		t.Errorf("expected backend usd, got %s", cfg.Export.Backend)
	}
	p := cfg.Export.Policy
	if p.Format != formats.EncodingBinary || p.EmbedTextures || !p.RelativePaths || !p.ExportMaterials || !p.ExportUVs {
		t.Errorf("unexpected default policy %+v", p)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if cfg.Metrics.Textfile != "" {
		t.Errorf("expected metrics disabled, got %s", cfg.Metrics.Textfile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "arframe.yaml")

	yamlContent := `
geometry:
  anchor: bottom
  outline:
    enabled: true
    width_m: 0.01

material:
  emission_strength: 0.8
  side_color: {r: 0.1, g: 0.2, b: 0.3}

export:
  backend: gltf
  usdcat: /opt/usd/bin/usdcat
  policy:
    format: ascii
    embed_textures: true

logging:
  level: "debug"
  log_file: "arframe.log"

metrics:
  textfile: /var/lib/node_exporter/arframe.prom
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Geometry.Anchor != geometry.AnchorBottom {
		t.Errorf("expected anchor bottom, got %s", cfg.Geometry.Anchor)
	}
	if !cfg.Geometry.Outline.Enabled || cfg.Geometry.Outline.WidthM != 0.01 {
		t.Errorf("unexpected outline %+v", cfg.Geometry.Outline)
	}
	if cfg.Geometry.Outline.OffsetM != 0.0005 {
		t.Errorf("expected untouched offset to keep its default, got %f", cfg.Geometry.Outline.OffsetM)
	}

	if cfg.Material.EmissionStrength != 0.8 {
		t.Errorf("expected emission 0.8, got %f", cfg.Material.EmissionStrength)
	}
	if cfg.Material.SideColor.G != 0.2 {
		t.Errorf("expected side color g 0.2, got %f", cfg.Material.SideColor.G)
	}
	if cfg.Material.Roughness != 0.35 {
		t.Errorf("expected default roughness to survive, got %f", cfg.Material.Roughness)
	}

	if cfg.Export.Backend != "gltf" {
		t.Errorf("expected backend gltf, got %s", cfg.Export.Backend)
	}
	if cfg.Export.USDCat != "/opt/usd/bin/usdcat" {
		t.Errorf("unexpected usdcat %s", cfg.Export.USDCat)
	}
	if cfg.Export.Policy.Format != formats.EncodingASCII {
		t.Errorf("expected ascii, got %s", cfg.Export.Policy.Format)
	}
	if !cfg.Export.Policy.EmbedTextures || !cfg.Export.Policy.ExportUVs {
		t.Errorf("unexpected policy %+v", cfg.Export.Policy)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "arframe.log" {
		t.Errorf("expected log file 'arframe.log', got %s", cfg.Logging.LogFile)
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/arframe.prom" {
		t.Errorf("unexpected metrics textfile %s", cfg.Metrics.Textfile)
	}
}

func TestLoadFromFileTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "arframe.toml")

	tomlContent := `
[geometry]
anchor = "bottom"

[export]
backend = "gltf"

[export.policy]
format = "ascii"
relative_paths = false

[material]
roughness = 0.5
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Geometry.Anchor != geometry.AnchorBottom {
		t.Errorf("expected anchor bottom, got %s", cfg.Geometry.Anchor)
	}
	if cfg.Export.Backend != "gltf" || cfg.Export.Policy.Format != formats.EncodingASCII {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Export.Policy.RelativePaths {
		t.Error("expected relative_paths false from file")
	}
	if !cfg.Export.Policy.ExportMaterials {
		t.Error("expected export_materials default to survive")
	}
	if cfg.Material.Roughness != 0.5 {
		t.Errorf("expected roughness 0.5, got %f", cfg.Material.Roughness)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	files := map[string]string{
		"invalid.yaml":  "geometry:\n  outline: not a map\n  invalid syntax here\n",
		"invalid.toml":  "[geometry\nanchor = ",
		"badformat.yml": "export:\n  policy:\n    format: usdz\n",
	}
	for name, content := range files {
		configPath := filepath.Join(tmpDir, name)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg := Default()
		if err := loadFromFile(cfg, configPath); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/arframe.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad anchor", func(c *Config) { c.Geometry.Anchor = "left" }},
		{"empty backend", func(c *Config) { c.Export.Backend = "" }},
		{"unset format", func(c *Config) { c.Export.Policy.Format = formats.EncodingUnknown }},
		{"bad roughness", func(c *Config) { c.Material.Roughness = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "arframe.toml")
	if err := os.WriteFile(configPath, []byte("[export]\nbackend = \"gltf\"\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find arframe.toml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "backend flag",
			setup: func() { *flagBackend = "gltf" },
			verify: func(cfg *Config) {
				if cfg.Export.Backend != "gltf" {
					t.Errorf("expected backend gltf, got %s", cfg.Export.Backend)
				}
			},
			teardown: func() { *flagBackend = "" },
		},
		{
			name:  "format flag",
			setup: func() { *flagFormat = "ascii" },
			verify: func(cfg *Config) {
				if cfg.Export.Policy.Format != formats.EncodingASCII {
					t.Errorf("expected ascii, got %s", cfg.Export.Policy.Format)
				}
			},
			teardown: func() { *flagFormat = "" },
		},
		{
			name:  "embed and outline flags",
			setup: func() { *flagEmbed, *flagOutline = true, true },
			verify: func(cfg *Config) {
				if !cfg.Export.Policy.EmbedTextures {
					t.Error("expected embed_textures with -embed-textures")
				}
				if !cfg.Geometry.Outline.Enabled {
					t.Error("expected outline with -outline")
				}
			},
			teardown: func() { *flagEmbed, *flagOutline = false, false },
		},
		{
			name:  "anchor and log file flags",
			setup: func() { *flagAnchor, *flagLogFile = "bottom", "run.log" },
			verify: func(cfg *Config) {
				if cfg.Geometry.Anchor != geometry.AnchorBottom {
					t.Errorf("expected anchor bottom, got %s", cfg.Geometry.Anchor)
				}
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagAnchor, *flagLogFile = "", "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags failed: %v", err)
			}
			tt.verify(cfg)
		})
	}
}

func TestApplyFlagsBadFormat(t *testing.T) {
	*flagFormat = "fbx"
	defer func() { *flagFormat = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "arframe.yaml")

	yamlContent := `
export:
  backend: gltf
  policy:
    format: ascii
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagFormat = "binary"
	defer func() {
		*flagConfig = ""
		*flagFormat = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Format should be from flag, backend from file
	if cfg.Export.Policy.Format != formats.EncodingBinary {
		t.Errorf("expected binary from flag, got %s", cfg.Export.Policy.Format)
	}
	if cfg.Export.Backend != "gltf" {
		t.Errorf("expected backend gltf from file, got %s", cfg.Export.Backend)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"saved.yaml", "saved.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Export.Backend = "gltf"
			cfg.Export.Policy.Format = formats.EncodingASCII
			cfg.Geometry.Anchor = geometry.AnchorBottom
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if loaded.Export.Backend != "gltf" || loaded.Export.Policy.Format != formats.EncodingASCII || loaded.Geometry.Anchor != geometry.AnchorBottom {
				t.Errorf("round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestWriteConfigFlag(t *testing.T) {
	if WriteConfigPath() != "" {
		t.Fatalf("expected no write-config path by default, got %s", WriteConfigPath())
	}

	out := filepath.Join(t.TempDir(), "effective.toml")
	*flagWriteConfig = out
	*flagBackend = "gltf"
	defer func() {
		*flagWriteConfig = ""
		*flagBackend = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.SaveTo(WriteConfigPath()); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	written := Default()
	if err := loadFromFile(written, out); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if written.Export.Backend != "gltf" {
		t.Errorf("expected flag override in written config, got backend %s", written.Export.Backend)
	}
}
