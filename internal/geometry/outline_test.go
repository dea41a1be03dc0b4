package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOutline(t *testing.T) {
	m := mustBuild(t, 30, 40, 1.5, BuildOptions{})
	front := m.Faces[m.FacesByTag(Front)[0]]
	frontZ := m.Points[front.Indices[0]].Z
	before := m.Bounds()

	opts := DefaultOutlineOptions()
	require.NoError(t, AddOutline(m, opts))

	outline := m.FacesByTag(Outline)
	require.Len(t, outline, 4)
	assert.Len(t, m.Faces, 10)
	assert.Len(t, m.Points, 24)

	for _, i := range outline {
		f := m.Faces[i]
		assert.InDelta(t, 1, f.Normal.Z, 1e-6, "outline face %d must face +Z", i)
		assert.Len(t, f.UVs, 4)
		for _, idx := range f.Indices {
			p := m.Points[idx]
			assert.InDelta(t, frontZ+float32(opts.OffsetM), p.Z, 1e-7)
			assert.GreaterOrEqual(t, p.X, before.Min.X)
			assert.LessOrEqual(t, p.X, before.Max.X)
			assert.GreaterOrEqual(t, p.Y, before.Min.Y)
			assert.LessOrEqual(t, p.Y, before.Max.Y)
		}
	}

	// Front and side classification is untouched.
	assert.Len(t, m.FacesByTag(Front), 1)
	assert.Len(t, m.FacesByTag(Side), 5)
}

func TestAddOutline_Flat(t *testing.T) {
	m := mustBuild(t, 30, 40, 0, BuildOptions{})
	require.NoError(t, AddOutline(m, DefaultOutlineOptions()))
	assert.Len(t, m.FacesByTag(Outline), 4)
}

func TestAddOutline_Failures(t *testing.T) {
	tests := []struct {
		name string
		opts OutlineOptions
	}{
		{"zero width", OutlineOptions{WidthM: 0, OffsetM: 0.001}},
		{"width covers picture", OutlineOptions{WidthM: 0.2, OffsetM: 0.001}},
		{"negative offset", OutlineOptions{WidthM: 0.01, OffsetM: -0.001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustBuild(t, 30, 40, 1.5, BuildOptions{})
			points, faces := len(m.Points), len(m.Faces)

			err := AddOutline(m, tt.opts)
			require.ErrorIs(t, err, ErrHeuristicFailed)
			assert.Len(t, m.Points, points, "mesh must be unchanged")
			assert.Len(t, m.Faces, faces, "mesh must be unchanged")
		})
	}
}

func TestAddOutline_NoFront(t *testing.T) {
	m := mustBuild(t, 30, 40, 1.5, BuildOptions{})
	for i := range m.Faces {
		m.Faces[i].Tag = Side
	}
	assert.ErrorIs(t, AddOutline(m, DefaultOutlineOptions()), ErrHeuristicFailed)
}
