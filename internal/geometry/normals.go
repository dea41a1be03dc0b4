package geometry

import (
	"slices"

	"github.com/Faultbox/arframe/pkg/math"
)

// coplanarTolerance scales the mesh diagonal into the distance below which a
// face center counts as lying on the centroid (the single quad of a flat frame).
const coplanarTolerance = 1e-6

// orientNormals recomputes every face normal from its corner order and flips
// faces whose normal points toward the mesh centroid. Faces coplanar with the
// centroid are oriented toward fallback. The result does not depend on the
// winding the faces were authored with.
func orientNormals(m *Mesh, fallback math.Vec3) {
	centroid := m.Centroid()
	eps := m.Bounds().Size().Length() * coplanarTolerance
	for i := range m.Faces {
		f := &m.Faces[i]
		pts := m.facePoints(f)
		n := newellNormal(pts).Normalize()

		outward := faceCenter(pts).Sub(centroid)
		side := n.Dot(outward)
		if side > -eps && side < eps {
			side = n.Dot(fallback)
		}
		if side < 0 {
			reverseFace(f)
			n = n.Neg()
		}
		f.Normal = n
	}
}

// orientToward recomputes a single face normal and flips it to agree with dir.
func orientToward(m *Mesh, f *Face, dir math.Vec3) {
	n := newellNormal(m.facePoints(f))
	if n.Dot(dir) < 0 {
		reverseFace(f)
		n = n.Neg()
	}
	f.Normal = n.Normalize()
}

// classifyFaces tags the face best aligned with front as Front, all others Side.
func classifyFaces(m *Mesh, front math.Vec3) {
	best := -1
	var bestDot float32
	for i := range m.Faces {
		d := m.Faces[i].Normal.Dot(front)
		if best < 0 || d > bestDot {
			best, bestDot = i, d
		}
	}
	for i := range m.Faces {
		if i == best {
			m.Faces[i].Tag = Front
		} else {
			m.Faces[i].Tag = Side
		}
	}
}

// newellNormal returns the (unnormalized) polygon normal using Newell's method,
// which is robust for quads and for slightly non-planar polygons.
func newellNormal(pts []math.Vec3) math.Vec3 {
	var n math.Vec3
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

func faceCenter(pts []math.Vec3) math.Vec3 {
	var c math.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float32(len(pts)))
}

// reverseFace flips winding, keeping per-corner UVs attached to their corners.
func reverseFace(f *Face) {
	slices.Reverse(f.Indices)
	if len(f.UVs) == len(f.Indices) {
		slices.Reverse(f.UVs)
	}
}
