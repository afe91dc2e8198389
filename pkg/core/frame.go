package core

import "github.com/go-gl/mathgl/mgl64"

// Frame is an orthonormal shading frame. The columns of the basis are the
// tangent, bitangent and normal, so local z is the normal direction.
type Frame struct {
	basis mgl64.Mat3
}

// NewFrame builds a shading frame around the given normal
func NewFrame(normal Vec3) Frame {
	n := normal.Normalize()
	t, b := OrthonormalBasis(n)
	return NewFrameFromBasis(t, b, n)
}

// NewFrameFromBasis builds a frame from explicit tangent, bitangent and normal
func NewFrameFromBasis(tangent, bitangent, normal Vec3) Frame {
	return Frame{basis: mgl64.Mat3FromCols(toMgl(tangent), toMgl(bitangent), toMgl(normal))}
}

// Normal returns the frame normal
func (f Frame) Normal() Vec3 {
	return fromMgl(f.basis.Col(2))
}

// Tangent returns the frame tangent
func (f Frame) Tangent() Vec3 {
	return fromMgl(f.basis.Col(0))
}

// Bitangent returns the frame bitangent
func (f Frame) Bitangent() Vec3 {
	return fromMgl(f.basis.Col(1))
}

// ToLocal expresses a world-space direction in frame coordinates
func (f Frame) ToLocal(v Vec3) Vec3 {
	return fromMgl(f.basis.Transpose().Mul3x1(toMgl(v)))
}

// FromLocal expresses a frame-space direction in world coordinates
func (f Frame) FromLocal(v Vec3) Vec3 {
	return fromMgl(f.basis.Mul3x1(toMgl(v)))
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}
