// Package geometry holds the vertex and triangle data emitters are attached to,
// plus the spherical mappings used by distant lights.
package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

var ErrDegenerateTriangle = errors.New("degenerate triangle")

// Vertex is one shared mesh vertex
type Vertex struct {
	Pos core.Vec3
	Nrm core.Vec3
	Tex core.Vec2
}

// Triangle references three vertices by index
type Triangle struct {
	I    [3]uint32
	GeoN core.Vec3 // Geometric normal, from the winding order
	Area float64
}

// NewTriangle creates a triangle and caches its geometric normal and area
func NewTriangle(vertices []Vertex, i0, i1, i2 uint32) (Triangle, error) {
	n := uint32(len(vertices))
	if i0 >= n || i1 >= n || i2 >= n {
		return Triangle{}, fmt.Errorf("triangle (%d, %d, %d) references %d vertices", i0, i1, i2, n)
	}

	edge1 := vertices[i1].Pos.Subtract(vertices[i0].Pos)
	edge2 := vertices[i2].Pos.Subtract(vertices[i0].Pos)
	cross := edge1.Cross(edge2)
	area := 0.5 * cross.Length()
	if area <= 0 || !core.NewVec3(area, 0, 0).IsFinite() {
		return Triangle{}, fmt.Errorf("%w: (%d, %d, %d)", ErrDegenerateTriangle, i0, i1, i2)
	}

	return Triangle{
		I:    [3]uint32{i0, i1, i2},
		GeoN: cross.Normalize(),
		Area: area,
	}, nil
}

// LerpPos interpolates the vertex positions with barycentric weights
func LerpPos(vertices []Vertex, tri Triangle, bc core.Vec3) core.Vec3 {
	return vertices[tri.I[0]].Pos.Multiply(bc.X).
		Add(vertices[tri.I[1]].Pos.Multiply(bc.Y)).
		Add(vertices[tri.I[2]].Pos.Multiply(bc.Z))
}

// LerpNormal interpolates the shading normals, falling back to the geometric
// normal when the vertices carry none
func LerpNormal(vertices []Vertex, tri Triangle, bc core.Vec3) core.Vec3 {
	n := vertices[tri.I[0]].Nrm.Multiply(bc.X).
		Add(vertices[tri.I[1]].Nrm.Multiply(bc.Y)).
		Add(vertices[tri.I[2]].Nrm.Multiply(bc.Z))
	if n.LengthSquared() == 0 {
		return tri.GeoN
	}
	return n.Normalize()
}

// LerpUV interpolates the texture coordinates
func LerpUV(vertices []Vertex, tri Triangle, bc core.Vec3) core.Vec2 {
	return vertices[tri.I[0]].Tex.Multiply(bc.X).
		Add(vertices[tri.I[1]].Tex.Multiply(bc.Y)).
		Add(vertices[tri.I[2]].Tex.Multiply(bc.Z))
}

// Intersect tests a ray against the triangle with the Möller-Trumbore algorithm.
// It returns the distance along the ray and the barycentric weights of the hit.
func Intersect(origin, direction core.Vec3, vertices []Vertex, tri Triangle, tMin, tMax float64) (float64, core.Vec3, bool) {
	const epsilon = 1e-8

	v0 := vertices[tri.I[0]].Pos
	edge1 := vertices[tri.I[1]].Pos.Subtract(v0)
	edge2 := vertices[tri.I[2]].Pos.Subtract(v0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return 0, core.Vec3{}, false
	}

	f := 1.0 / a
	s := origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, core.Vec3{}, false
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, core.Vec3{}, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, core.Vec3{}, false
	}
	return t, core.NewVec3(1-u-v, u, v), true
}
