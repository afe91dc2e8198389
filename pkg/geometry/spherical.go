package geometry

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

// DirectionToUV maps a unit direction to equirectangular coordinates. v = 0 is the
// +Y pole; the offset rotates the map around Y.
func DirectionToUV(dir core.Vec3, offset core.Vec2) core.Vec2 {
	theta := math.Acos(math.Max(-1, math.Min(1, dir.Y)))
	phi := math.Atan2(dir.Z, dir.X)
	u := (phi+math.Pi)/(2*math.Pi) - offset.X
	u -= math.Floor(u)
	return core.NewVec2(u, theta/math.Pi)
}

// UVToDirection is the inverse of DirectionToUV
func UVToDirection(uv, offset core.Vec2) core.Vec3 {
	phi := (uv.X+offset.X)*2*math.Pi - math.Pi
	theta := uv.Y * math.Pi
	sinTheta := math.Sin(theta)
	return core.NewVec3(sinTheta*math.Cos(phi), math.Cos(theta), sinTheta*math.Sin(phi))
}

// DiskUV maps a direction inside a cone around axis to [0,1]² coordinates on the
// disk of the given radius, the inverse of the disk offset used when sampling the cone
func DiskUV(axis, dir core.Vec3, diskSize, cosAngle float64) core.Vec2 {
	if diskSize <= 0 {
		return core.NewVec2(0.5, 0.5)
	}
	u, v := core.OrthonormalBasis(axis)
	d := dir.Dot(axis)
	if d < cosAngle || d <= 0 {
		return core.NewVec2(0.5, 0.5)
	}
	// Project back onto the tangent plane at unit distance along the axis
	p := dir.Multiply(1 / d)
	x := p.Dot(u) / diskSize
	y := p.Dot(v) / diskSize
	return core.NewVec2(0.5*x+0.5, 0.5*y+0.5)
}
