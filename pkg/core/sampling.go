package core

import (
	"math"
	"math/rand"
)

// Sampler provides independent uniform random numbers for the kernel.
// Implementations are owned by a single path or goroutine and are never shared.
type Sampler interface {
	Next() float64
	Next2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a reproducible sampler from a seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Next returns a random float64 in [0, 1)
func (r *RandomSampler) Next() float64 {
	return r.random.Float64()
}

// Next2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Next2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OrthonormalBasis returns two unit vectors that complete n to a right-handed basis
func OrthonormalBasis(n Vec3) (u, v Vec3) {
	var nt Vec3
	if math.Abs(n.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	u = nt.Cross(n).Normalize()
	v = n.Cross(u)
	return u, v
}

// SampleCosineDistribution samples a direction around normal with density
// proportional to cos^collimation. A collimation of 1 gives the cosine-weighted
// hemisphere with pdf cos(θ)/π.
func SampleCosineDistribution(sample Vec2, normal Vec3, collimation float64) Vec3 {
	u, v := OrthonormalBasis(normal)
	return SampleCosineDistributionBasis(sample, normal, u, v, collimation)
}

// SampleCosineDistributionBasis is SampleCosineDistribution with a caller supplied basis
func SampleCosineDistributionBasis(sample Vec2, normal, u, v Vec3, collimation float64) Vec3 {
	cosTheta := math.Pow(sample.X, 1.0/(collimation+1.0))
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	return u.Multiply(sinTheta * math.Cos(phi)).
		Add(v.Multiply(sinTheta * math.Sin(phi))).
		Add(normal.Multiply(cosTheta)).
		Normalize()
}

// SampleUniformSphere generates a uniform random direction on the unit sphere
func SampleUniformSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleDisk maps a square sample to the unit disk with the concentric mapping,
// which avoids rejection sampling
func SampleDisk(sample Vec2) Vec2 {
	offset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if offset.X == 0 && offset.Y == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(offset.X) > math.Abs(offset.Y) {
		r = offset.X
		theta = math.Pi / 4 * (offset.Y / offset.X)
	} else {
		r = offset.Y
		theta = math.Pi/2 - math.Pi/4*(offset.X/offset.Y)
	}

	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// RandomBarycentric returns barycentric weights for a point uniformly
// distributed over a triangle
func RandomBarycentric(sample Vec2) Vec3 {
	su := math.Sqrt(sample.X)
	b1 := 1.0 - su
	b2 := sample.Y * su
	return NewVec3(1.0-b1-b2, b1, b2)
}

// AreaToSolidAngle converts an area-measure density to solid angle. dp joins the
// sampled point and the receiving point in either direction and n is the surface
// normal at the sampled point.
// collimation sharpens the emitted lobe for collimated area emitters.
func AreaToSolidAngle(dp, n Vec3, collimation float64) float64 {
	distanceSquared := dp.LengthSquared()
	if distanceSquared <= 0 {
		return 0
	}
	cosTheta := math.Abs(n.Dot(dp.Multiply(1.0 / math.Sqrt(distanceSquared))))
	if collimation != 1.0 {
		cosTheta = math.Pow(cosTheta, collimation)
	}
	if cosTheta <= 1e-8 {
		return 0
	}
	return distanceSquared / cosTheta
}
