package geometry

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/arframe/pkg/math"
)

// Anchor selects where the baked origin sits relative to the frame.
type Anchor string

// Anchor constants.
const (
	AnchorCenter Anchor = "center" // bounding box centered on the origin
	AnchorBottom Anchor = "bottom" // bottom edge on Y = 0
)

// FrontAxis is the outward direction of the texture-bearing face after baking.
var FrontAxis = math.UnitZ

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	Anchor Anchor
}

// unitCorners are the corners of a unit cube centered on the origin in the Z-up
// authoring frame. Corner i has x = bit 0, y = bit 1, z = bit 2.
var unitCorners = func() [8]math.Vec3 {
	var c [8]math.Vec3
	for i := range c {
		c[i] = math.Vec3{
			X: float32(i&1) - 0.5,
			Y: float32((i>>1)&1) - 0.5,
			Z: float32((i>>2)&1) - 0.5,
		}
	}
	return c
}()

// boxFaces lists the six cube faces as corner cycles. Winding is deliberately not
// trusted; orientNormals fixes it.
var boxFaces = [6][4]uint32{
	{0, 1, 5, 4}, // y = -0.5, faces the viewer in the authoring frame
	{2, 3, 7, 6}, // y = +0.5
	{0, 2, 6, 4}, // x = -0.5
	{1, 3, 7, 5}, // x = +0.5
	{0, 1, 3, 2}, // z = -0.5
	{4, 5, 7, 6}, // z = +0.5
}

// Build creates a frame mesh for the given dimensions.
//
// The mesh is authored Z-up with the picture standing in the XZ plane facing -Y
// and its thickness centered on that plane, then a -90 degree rotation about X
// (Z-up to Y-up) composed with the anchor translation is baked into the points.
// Viewers ignore or mishandle unapplied transforms on non-leaf prims, so the
// result carries no transform of its own.
func Build(dims Dimensions, opts BuildOptions) (*Mesh, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}

	m := &Mesh{}
	switch dims.Variant() {
	case Flat:
		buildFlat(m)
	case Solid:
		buildSolid(m)
	}

	bake, err := bakeMatrix(dims, opts.Anchor)
	if err != nil {
		return nil, err
	}
	for i, p := range m.Points {
		m.Points[i] = bake.TransformVec3(p)
	}

	orientNormals(m, FrontAxis)
	classifyFaces(m, FrontAxis)
	generateUVs(m)
	m.AssignMaterials([]FaceTag{Front, Side})

	return m, nil
}

func buildFlat(m *Mesh) {
	front := boxFaces[0]
	for _, idx := range front {
		c := unitCorners[idx]
		c.Y = 0
		m.Points = append(m.Points, c)
	}
	m.Faces = append(m.Faces, Face{Indices: []uint32{0, 1, 2, 3}})
}

func buildSolid(m *Mesh) {
	m.Points = append(m.Points, unitCorners[:]...)
	for _, f := range boxFaces {
		m.Faces = append(m.Faces, Face{Indices: []uint32{f[0], f[1], f[2], f[3]}})
	}
}

// bakeMatrix returns T(anchor) * Rx(-90) * S(width, depth, height).
func bakeMatrix(dims Dimensions, anchor Anchor) (math.Mat4, error) {
	w := float32(dims.WidthM)
	h := float32(dims.HeightM)
	d := float32(dims.DepthM)

	var lift float32
	switch anchor {
	case AnchorCenter, "":
	case AnchorBottom:
		lift = h / 2
	default:
		return math.Mat4{}, fmt.Errorf("unknown anchor %q", anchor)
	}

	return math.Translate(0, lift, 0).
		Mul(math.RotateX(float32(-gomath.Pi / 2))).
		Mul(math.Scale(w, d, h)), nil
}
