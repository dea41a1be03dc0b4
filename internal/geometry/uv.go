package geometry

import "github.com/Faultbox/arframe/pkg/math"

// unitSquare is the corner mapping reused by faces that carry no texture.
var unitSquare = []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// generateUVs projects the front face onto the XY plane so its UVs span the unit
// square: u grows with X, t grows with Y (bottom-left origin). The picture's
// top-left corner therefore maps to st (0, 1), the image's top-left pixel, with
// no mirroring. Non-front faces use a texture-free material and reuse the unit
// square.
func generateUVs(m *Mesh) {
	for i := range m.Faces {
		f := &m.Faces[i]
		if f.Tag == Front {
			f.UVs = planarUVs(m.facePoints(f))
			continue
		}
		f.UVs = make([]math.Vec2, len(f.Indices))
		for j := range f.UVs {
			f.UVs[j] = unitSquare[j%len(unitSquare)]
		}
	}
}

// planarUVs maps points into the unit square by their XY extents.
func planarUVs(pts []math.Vec3) []math.Vec2 {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	w := hi.X - lo.X
	h := hi.Y - lo.Y

	uvs := make([]math.Vec2, len(pts))
	for i, p := range pts {
		var u, t float32
		if w > 0 {
			u = (p.X - lo.X) / w
		}
		if h > 0 {
			t = (p.Y - lo.Y) / h
		}
		uvs[i] = math.Vec2{X: u, Y: t}
	}
	return uvs
}
