// Package export serializes a frame mesh and its materials into an interchange
// document. Backends advertise their capability set; the caller negotiates a
// capability.Config against it before calling Export.
package export

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/google/uuid"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/material"
)

// Export errors.
var (
	// ErrBackendUnavailable means the requested serialization capability is absent.
	ErrBackendUnavailable = errors.New("export backend unavailable")
	// ErrExportFailed wraps a backend failure while writing the document.
	ErrExportFailed = errors.New("export failed")
)

// Generator is recorded in every document.
const Generator = "arframe"

// assetNamespace scopes deterministic asset ids.
var assetNamespace = uuid.MustParse("6f1c9a52-3f0e-5b7d-9a41-2c8e5d7b0a13")

// Document is everything a backend serializes.
type Document struct {
	Mesh      *geometry.Mesh
	Materials []material.Spec
	// TexturePath locates the staged texture on disk; read only when embedding.
	// Documents always reference the texture as material.TextureFileName.
	TexturePath string
	AssetID     uuid.UUID
}

// AssetID derives a stable id from the staged texture checksum and the physical
// size, so identical inputs produce identical documents.
func AssetID(textureSum [32]byte, dims geometry.Dimensions) uuid.UUID {
	buf := make([]byte, 0, len(textureSum)+24)
	buf = append(buf, textureSum[:]...)
	for _, v := range []float64{dims.WidthM, dims.HeightM, dims.DepthM} {
		buf = binary.BigEndian.AppendUint64(buf, gomath.Float64bits(v))
	}
	return uuid.NewSHA1(assetNamespace, buf)
}

// Validate checks that the document can be serialized.
func (d *Document) Validate() error {
	if d.Mesh == nil || len(d.Mesh.Faces) == 0 {
		return fmt.Errorf("%w: document has no geometry", ErrExportFailed)
	}
	for i := range d.Mesh.Faces {
		f := &d.Mesh.Faces[i]
		if f.Material < 0 || (len(d.Materials) > 0 && f.Material >= len(d.Materials)) {
			return fmt.Errorf("%w: face %d has material slot %d of %d", ErrExportFailed, i, f.Material, len(d.Materials))
		}
	}
	return nil
}

// Backend writes documents in one format family.
type Backend interface {
	Name() string
	// Capabilities reports the options this backend supports. It is queried once
	// per invocation.
	Capabilities() (capability.Set, error)
	Export(doc *Document, cfg capability.Config, path string) error
}

// Options configures backend construction.
type Options struct {
	// USDCat is the usdcat executable used for binary USD; bare names are looked
	// up on PATH. Empty means "usdcat".
	USDCat string `yaml:"usdcat" toml:"usdcat"`
}

type factory func(Options) Backend

var backends = map[string]factory{
	"usd":  func(o Options) Backend { return NewUSD(o) },
	"gltf": func(o Options) Backend { return NewGLTF() },
}

// Names returns the registered backend names.
func Names() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the backend called name.
func Lookup(name string, opts Options) (Backend, error) {
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (have %v)", ErrBackendUnavailable, name, Names())
	}
	return f(opts), nil
}

// facesByMaterial groups face indices by material slot, in slot order.
func facesByMaterial(m *geometry.Mesh, slots int) [][]int {
	groups := make([][]int, max(slots, 1))
	for i := range m.Faces {
		slot := m.Faces[i].Material
		if slot < 0 || slot >= len(groups) {
			slot = 0
		}
		groups[slot] = append(groups[slot], i)
	}
	return groups
}

// doubleSided reports whether the mesh has no back: a flat quad must render from
// both sides.
func doubleSided(m *geometry.Mesh) bool {
	return len(m.FacesByTag(geometry.Side)) == 0
}
