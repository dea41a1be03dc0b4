package geometry

import (
	"fmt"

	"github.com/Faultbox/arframe/pkg/math"
)

// OutlineOptions configures the emissive border embellishment.
type OutlineOptions struct {
	WidthM  float64 // border width, inset from the picture edge
	OffsetM float64 // distance the border floats in front of the picture
}

// DefaultOutlineOptions returns a 6mm border floating 0.5mm in front.
func DefaultOutlineOptions() OutlineOptions {
	return OutlineOptions{WidthM: 0.006, OffsetM: 0.0005}
}

// AddOutline adds four border quads along the inside of the front face perimeter,
// tagged Outline. On failure the mesh is unchanged and the error wraps
// ErrHeuristicFailed.
func AddOutline(m *Mesh, opts OutlineOptions) error {
	fronts := m.FacesByTag(Front)
	if len(fronts) != 1 {
		return fmt.Errorf("%w: outline needs exactly one front face, found %d", ErrHeuristicFailed, len(fronts))
	}
	front := &m.Faces[fronts[0]]
	pts := m.facePoints(front)
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}

	bw := float32(opts.WidthM)
	limit := min(hi.X-lo.X, hi.Y-lo.Y) / 2
	if bw <= 0 || bw >= limit {
		return fmt.Errorf("%w: outline width %g m must be in (0, %g) m", ErrHeuristicFailed, opts.WidthM, limit)
	}
	if opts.OffsetM < 0 {
		return fmt.Errorf("%w: outline offset %g m must be >= 0", ErrHeuristicFailed, opts.OffsetM)
	}
	z := hi.Z + float32(opts.OffsetM)

	strips := [4][4]float32{ // minX, minY, maxX, maxY
		{lo.X, hi.Y - bw, hi.X, hi.Y},           // top
		{lo.X, lo.Y, hi.X, lo.Y + bw},           // bottom
		{lo.X, lo.Y + bw, lo.X + bw, hi.Y - bw}, // left
		{hi.X - bw, lo.Y + bw, hi.X, hi.Y - bw}, // right
	}
	for _, s := range strips {
		base := uint32(len(m.Points))
		m.Points = append(m.Points,
			math.Vec3{X: s[0], Y: s[1], Z: z},
			math.Vec3{X: s[2], Y: s[1], Z: z},
			math.Vec3{X: s[2], Y: s[3], Z: z},
			math.Vec3{X: s[0], Y: s[3], Z: z},
		)
		m.Faces = append(m.Faces, Face{
			Indices:  []uint32{base, base + 1, base + 2, base + 3},
			UVs:      make([]math.Vec2, 4),
			Tag:      Outline,
			Material: -1,
		})
		orientToward(m, &m.Faces[len(m.Faces)-1], FrontAxis)
	}
	return nil
}
