// Package capability negotiates export options against what a backend supports.
package capability

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/arframe/pkg/formats"
)

// ErrNoFormat is returned when a backend advertises no document format at all.
var ErrNoFormat = errors.New("backend supports no document format")

// Option names an export option a backend may support.
type Option string

// Options.
const (
	FormatASCII     Option = "format.ascii"
	FormatBinary    Option = "format.binary"
	EmbedTextures   Option = "embed_textures"
	RelativePaths   Option = "relative_paths"
	ExportMaterials Option = "export_materials"
	ExportUVs       Option = "export_uvs"
)

// AllOptions lists every option in a stable order.
var AllOptions = []Option{FormatASCII, FormatBinary, EmbedTextures, RelativePaths, ExportMaterials, ExportUVs}

// Set maps option names to backend support. Missing keys mean unsupported.
type Set map[Option]bool

// NewSet returns a set supporting exactly opts.
func NewSet(opts ...Option) Set {
	s := make(Set, len(opts))
	for _, o := range opts {
		s[o] = true
	}
	return s
}

// Supports reports whether o is supported.
func (s Set) Supports(o Option) bool {
	return s[o]
}

// Supported returns the supported options sorted by name.
func (s Set) Supported() []Option {
	var out []Option
	for o, ok := range s {
		if ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Config is the negotiated export configuration.
type Config struct {
	Format          formats.Encoding
	EmbedTextures   bool
	RelativePaths   bool
	ExportMaterials bool
	ExportUVs       bool
}

// Policy is the desired configuration before negotiation.
type Policy struct {
	Format          formats.Encoding `yaml:"format" toml:"format"`
	EmbedTextures   bool             `yaml:"embed_textures" toml:"embed_textures"`
	RelativePaths   bool             `yaml:"relative_paths" toml:"relative_paths"`
	ExportMaterials bool             `yaml:"export_materials" toml:"export_materials"`
	ExportUVs       bool             `yaml:"export_uvs" toml:"export_uvs"`
}

// DefaultPolicy requests a binary document with a sibling texture referenced by a
// relative path, materials and UVs.
func DefaultPolicy() Policy {
	return Policy{
		Format:          formats.EncodingBinary,
		EmbedTextures:   false,
		RelativePaths:   true,
		ExportMaterials: true,
		ExportUVs:       true,
	}
}

// Negotiate intersects policy with the backend's capability set.
//
// Requested options the backend lacks are dropped and returned for logging. A
// binary request falls back to ASCII when only ASCII is available (the dropped list
// then contains FormatBinary). Negotiate fails only when no format is supported.
func Negotiate(policy Policy, set Set) (Config, []Option, error) {
	var (
		cfg     Config
		dropped []Option
	)

	ascii, binary := set.Supports(FormatASCII), set.Supports(FormatBinary)
	switch {
	case !ascii && !binary:
		return Config{}, nil, fmt.Errorf("%w (advertised: %v)", ErrNoFormat, set.Supported())
	case policy.Format == formats.EncodingASCII && ascii:
		cfg.Format = formats.EncodingASCII
	case policy.Format == formats.EncodingASCII:
		cfg.Format = formats.EncodingBinary
		dropped = append(dropped, FormatASCII)
	case binary:
		cfg.Format = formats.EncodingBinary
	default:
		cfg.Format = formats.EncodingASCII
		dropped = append(dropped, FormatBinary)
	}

	want := func(requested bool, o Option) bool {
		if !requested {
			return false
		}
		if !set.Supports(o) {
			dropped = append(dropped, o)
			return false
		}
		return true
	}
	cfg.EmbedTextures = want(policy.EmbedTextures, EmbedTextures)
	cfg.RelativePaths = want(policy.RelativePaths, RelativePaths)
	cfg.ExportMaterials = want(policy.ExportMaterials, ExportMaterials)
	cfg.ExportUVs = want(policy.ExportUVs, ExportUVs)

	return cfg, dropped, nil
}
