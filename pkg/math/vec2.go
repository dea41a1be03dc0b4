package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// FlipY returns the coordinate with Y mirrored inside the unit square.
// Converts between bottom-left and top-left texture origins.
func (v Vec2) FlipY() Vec2 {
	return Vec2{v.X, 1 - v.Y}
}

// Array returns the components as an array.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}
