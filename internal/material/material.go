// Package material composes physically based material descriptions for the frame.
//
// A Spec binds the staged texture to a principled shading model through a small
// declarative Graph. Export backends translate the graph into their own node
// vocabulary; nothing in this package knows about a file format.
package material

import (
	"errors"
	"fmt"

	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/texture"
)

// TextureFileName is the only texture path a material ever references.
const TextureFileName = texture.FileName

// ErrInvalidOptions is returned for out-of-range material options.
var ErrInvalidOptions = errors.New("invalid material options")

// ColorSpace tags how texture samples are interpreted.
type ColorSpace string

// Color spaces.
const (
	SRGB ColorSpace = "sRGB"
	Raw  ColorSpace = "raw"
)

// RGB is a linear color.
type RGB struct {
	R float32 `yaml:"r" toml:"r"`
	G float32 `yaml:"g" toml:"g"`
	B float32 `yaml:"b" toml:"b"`
}

// Float64 returns the channels widened for formats that store doubles.
func (c RGB) Float64() [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

// Scale multiplies every channel by s.
func (c RGB) Scale(s float32) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Spec is one material of the exported document.
type Spec struct {
	Name string
	Tag  geometry.FaceTag
	// TexturePath is TextureFileName for textured materials, empty otherwise.
	TexturePath string
	ColorSpace  ColorSpace
	// BaseColor is used when the material has no texture.
	BaseColor RGB
	// EmissionStrength scales the texture (or Emission) into the emissive channel.
	EmissionStrength float32
	Emission         RGB
	Roughness        float32
	Metallic         float32
	Graph            Graph
}

// Textured reports whether the material samples the staged texture.
func (s *Spec) Textured() bool {
	return s.TexturePath != ""
}

// Options configures Compose.
type Options struct {
	EmissionStrength float32    `yaml:"emission_strength" toml:"emission_strength"`
	Roughness        float32    `yaml:"roughness" toml:"roughness"`
	ColorSpace       ColorSpace `yaml:"color_space" toml:"color_space"`

	SideColor     RGB     `yaml:"side_color" toml:"side_color"`
	SideRoughness float32 `yaml:"side_roughness" toml:"side_roughness"`

	OutlineColor    RGB     `yaml:"outline_color" toml:"outline_color"`
	OutlineEmission float32 `yaml:"outline_emission" toml:"outline_emission"`
}

// DefaultOptions returns the shading values AR viewers display well: a slight
// emission so dimly lit scenes still show the picture, and a dark satin edge.
func DefaultOptions() Options {
	return Options{
		EmissionStrength: 0.6,
		Roughness:        0.35,
		ColorSpace:       SRGB,
		SideColor:        RGB{0.05, 0.05, 0.06},
		SideRoughness:    0.6,
		OutlineColor:     RGB{0.95, 0.93, 0.88},
		OutlineEmission:  1,
	}
}

// Validate checks that every factor is in [0, 1] and the color space is known.
func (o Options) Validate() error {
	unit := []struct {
		name string
		v    float32
	}{
		{"emission_strength", o.EmissionStrength},
		{"roughness", o.Roughness},
		{"side_roughness", o.SideRoughness},
		{"outline_emission", o.OutlineEmission},
	}
	for _, u := range unit {
		if !(u.v >= 0 && u.v <= 1) {
			return fmt.Errorf("%w: %s must be in [0, 1], got %g", ErrInvalidOptions, u.name, u.v)
		}
	}
	if o.ColorSpace != SRGB && o.ColorSpace != Raw {
		return fmt.Errorf("%w: unknown color space %q", ErrInvalidOptions, o.ColorSpace)
	}
	return nil
}
