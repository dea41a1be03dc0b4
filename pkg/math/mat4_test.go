package math

import (
	"math"
	"testing"
)

func TestMulUnitScale(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Scale(1, 1, 1))

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * S(1) should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestRotateXZUpToYUp(t *testing.T) {
	m := RotateX(float32(-math.Pi / 2))

	// Z-up becomes Y-up, -Y (front in a Z-up frame) becomes +Z.
	if got, want := m.TransformVec3(UnitZ), (Vec3{0, 1, 0}); got != want {
		t.Errorf("RotateX(-90) of +Z: got %v, want %v", got, want)
	}
	if got := m.TransformVec3(Vec3{0, -1, 0}); got != UnitZ {
		t.Errorf("RotateX(-90) of -Y: got %v, want %v", got, UnitZ)
	}
}

func TestRotateXQuarterTurnsAreExact(t *testing.T) {
	for _, angle := range []float64{math.Pi / 2, math.Pi, -math.Pi / 2, 3 * math.Pi / 2} {
		m := RotateX(float32(angle))
		for i, v := range m {
			if v != 0 && v != 1 && v != -1 {
				t.Errorf("RotateX(%v) element %d = %v, want exact 0 or +-1", angle, i, v)
			}
		}
	}
}

func TestRotateX45(t *testing.T) {
	m := RotateX(float32(math.Pi / 4))
	got := m.TransformVec3(Vec3{0, 1, 0})

	want := float32(math.Sqrt2 / 2)
	if abs(got.X) > 0.0001 || abs(got.Y-want) > 0.0001 || abs(got.Z-want) > 0.0001 {
		t.Errorf("RotateX 45: got %v, want (0, %v, %v)", got, want, want)
	}
}

func TestComposeScaleRotateTranslate(t *testing.T) {
	m := Translate(0, 1, 0).Mul(RotateX(float32(-math.Pi / 2))).Mul(Scale(2, 3, 4))
	got := m.TransformVec3(Vec3{1, 1, 1})

	// scale -> (2,3,4); rotate -> (2,4,-3); translate -> (2,5,-3)
	want := Vec3{2, 5, -3}
	if got != want {
		t.Errorf("T*R*S: got %v, want %v", got, want)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
