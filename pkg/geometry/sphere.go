package geometry

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

// BoundingSphere encloses every vertex; distant emitters place their origins on it
type BoundingSphere struct {
	Center core.Vec3
	Radius float64
}

// NewBoundingSphere returns the sphere centred on the vertex bounding box that
// contains every vertex. An empty vertex list gives the unit sphere.
func NewBoundingSphere(vertices []Vertex) BoundingSphere {
	if len(vertices) == 0 {
		return BoundingSphere{Radius: 1}
	}

	lo, hi := vertices[0].Pos, vertices[0].Pos
	for _, v := range vertices[1:] {
		lo = core.NewVec3(math.Min(lo.X, v.Pos.X), math.Min(lo.Y, v.Pos.Y), math.Min(lo.Z, v.Pos.Z))
		hi = core.NewVec3(math.Max(hi.X, v.Pos.X), math.Max(hi.Y, v.Pos.Y), math.Max(hi.Z, v.Pos.Z))
	}

	center := lo.Add(hi).Multiply(0.5)
	radius := 0.0
	for _, v := range vertices {
		radius = math.Max(radius, v.Pos.Subtract(center).Length())
	}
	if radius == 0 {
		radius = 1
	}
	return BoundingSphere{Center: center, Radius: radius}
}

// Area returns the area of the sphere's cross-section disk
func (s BoundingSphere) Area() float64 {
	return math.Pi * s.Radius * s.Radius
}

// DistanceToSphere returns the distance along a unit direction from origin to the
// far intersection with the sphere, or 0 when the ray misses it.
func DistanceToSphere(origin, direction core.Vec3, s BoundingSphere) float64 {
	oc := origin.Subtract(s.Center)

	// Quadratic equation coefficients with a unit direction: t² + 2·halfB·t + c = 0
	halfB := oc.Dot(direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - c
	if discriminant < 0 {
		return 0
	}
	return math.Max(0, -halfB+math.Sqrt(discriminant))
}
