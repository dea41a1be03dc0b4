// Package geometry builds AR-viewer-safe frame meshes sized to physical dimensions.
//
// Meshes come out in a Y-up, meters-per-unit 1 frame with every transform baked
// into the points: the picture lies in the XY plane and faces +Z.
package geometry

import (
	"errors"
	"fmt"

	"github.com/Faultbox/arframe/pkg/math"
)

// Geometry errors.
var (
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrHeuristicFailed marks an optional quality step that could not complete.
	// It is never fatal: the mesh is left as it was before the step.
	ErrHeuristicFailed = errors.New("geometry heuristic failed")
)

// Variant selects between a flat quad and a solid box.
type Variant int

// Variant constants.
const (
	Flat Variant = iota
	Solid
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Flat:
		return "flat"
	case Solid:
		return "solid"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// FaceTag classifies a face for material assignment.
type FaceTag int

// Face tags.
const (
	Side    FaceTag = iota // Neutral, untextured
	Front                  // Texture-bearing
	Outline                // Emissive border embellishment
)

// String returns the tag name.
func (t FaceTag) String() string {
	switch t {
	case Side:
		return "side"
	case Front:
		return "front"
	case Outline:
		return "outline"
	default:
		return fmt.Sprintf("FaceTag(%d)", int(t))
	}
}

// Dimensions holds physical size in meters.
type Dimensions struct {
	WidthM  float64
	HeightM float64
	DepthM  float64 // 0 selects the flat variant
}

// FromCentimeters converts centimeter inputs to meters and validates them.
func FromCentimeters(widthCM, heightCM, thicknessCM float64) (Dimensions, error) {
	d := Dimensions{
		WidthM:  widthCM / 100,
		HeightM: heightCM / 100,
		DepthM:  thicknessCM / 100,
	}
	if err := d.Validate(); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

// MaxDimensionM bounds every side. Points are float32, and sums over corners
// (bounds, centroid) must stay finite.
const MaxDimensionM = 1000

// Validate checks 0 < width, height <= MaxDimensionM and 0 <= depth <= MaxDimensionM.
func (d Dimensions) Validate() error {
	if !inRange(d.WidthM) || d.WidthM == 0 {
		return fmt.Errorf("%w: width must be in (0, %d] m, got %g m", ErrInvalidDimension, MaxDimensionM, d.WidthM)
	}
	if !inRange(d.HeightM) || d.HeightM == 0 {
		return fmt.Errorf("%w: height must be in (0, %d] m, got %g m", ErrInvalidDimension, MaxDimensionM, d.HeightM)
	}
	if !inRange(d.DepthM) {
		return fmt.Errorf("%w: thickness must be in [0, %d] m, got %g m", ErrInvalidDimension, MaxDimensionM, d.DepthM)
	}
	return nil
}

// Variant returns Solid for positive depth, Flat otherwise.
func (d Dimensions) Variant() Variant {
	if d.DepthM > 0 {
		return Solid
	}
	return Flat
}

// inRange rejects NaN as well, since every comparison with NaN is false.
func inRange(v float64) bool {
	return v >= 0 && v <= MaxDimensionM
}

// Face is a polygon over mesh points.
type Face struct {
	Indices []uint32
	Normal  math.Vec3
	// UVs holds one texture coordinate per corner (face-varying), bottom-left origin.
	UVs      []math.Vec2
	Tag      FaceTag
	Material int // index into the material list, -1 when unassigned
}

// Mesh holds frame geometry.
type Mesh struct {
	Points []math.Vec3
	Faces  []Face
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Bounds returns the bounding box of all points.
func (m *Mesh) Bounds() Bounds {
	if len(m.Points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Points[0], Max: m.Points[0]}
	for _, p := range m.Points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Centroid returns the mean of all points.
func (m *Mesh) Centroid() math.Vec3 {
	var sum math.Vec3
	if len(m.Points) == 0 {
		return sum
	}
	for _, p := range m.Points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float32(len(m.Points)))
}

// FacesByTag returns the indices of faces carrying tag.
func (m *Mesh) FacesByTag(tag FaceTag) []int {
	var out []int
	for i := range m.Faces {
		if m.Faces[i].Tag == tag {
			out = append(out, i)
		}
	}
	return out
}

// CornerCount returns the total number of face corners.
func (m *Mesh) CornerCount() int {
	n := 0
	for i := range m.Faces {
		n += len(m.Faces[i].Indices)
	}
	return n
}

// AssignMaterials sets each face's material index to the position of its tag in
// order. Faces whose tag is absent fall back to index 0.
func (m *Mesh) AssignMaterials(order []FaceTag) {
	slot := make(map[FaceTag]int, len(order))
	for i, tag := range order {
		slot[tag] = i
	}
	for i := range m.Faces {
		idx, ok := slot[m.Faces[i].Tag]
		if !ok {
			idx = 0
		}
		m.Faces[i].Material = idx
	}
}

// facePoints returns the points of a face in corner order.
func (m *Mesh) facePoints(f *Face) []math.Vec3 {
	pts := make([]math.Vec3, len(f.Indices))
	for i, idx := range f.Indices {
		pts[i] = m.Points[idx]
	}
	return pts
}
