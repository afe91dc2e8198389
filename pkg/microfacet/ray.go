package microfacet

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

// RayInfo is the state of a particle travelling over the height field.
// W is the direction of travel; H is the height in [-1, 1], or +Inf once the
// particle has left the surface. Values are updated by returning new copies.
type RayInfo struct {
	W        core.Vec3
	Theta    float64
	CosTheta float64
	SinTheta float64
	TanTheta float64
	Alpha    float64 // Roughness projected onto the direction's azimuth
	Lambda   float64
	H        float64
	C1       float64
	G1       float64
}

// NewRayInfo creates the state for a direction with the height unset
func NewRayInfo(w core.Vec3, alpha core.Vec2) RayInfo {
	return RayInfo{}.WithDirection(w, alpha)
}

// Escaped reports whether the particle has left the surface
func (r RayInfo) Escaped() bool {
	return math.IsInf(r.H, 1)
}

// WithDirection returns the state travelling along w at the same height.
// The masking terms at the current height must be refreshed with WithHeight.
func (r RayInfo) WithDirection(w core.Vec3, alpha core.Vec2) RayInfo {
	r.W = w
	r.CosTheta = w.Z
	r.Theta = math.Acos(math.Max(-1, math.Min(1, w.Z)))
	r.SinTheta = math.Sin(r.Theta)
	r.TanTheta = r.SinTheta / r.CosTheta

	sin2 := 1 - w.Z*w.Z
	if sin2 > 0 {
		cosPhi2 := w.X * w.X / sin2
		sinPhi2 := w.Y * w.Y / sin2
		r.Alpha = math.Sqrt(cosPhi2*alpha.X*alpha.X + sinPhi2*alpha.Y*alpha.Y)
	} else {
		r.Alpha = alpha.X
	}

	switch {
	case w.Z > normalLimit:
		r.Lambda = 0
	case w.Z < -normalLimit:
		r.Lambda = -1
	default:
		a := 1 / r.TanTheta / r.Alpha
		sign := 1.0
		if a <= 0 {
			sign = -1
		}
		r.Lambda = 0.5 * (-1 + sign*math.Sqrt(1+1/(a*a)))
	}
	return r
}

// WithHeight returns the state at height h with its masking terms updated
func (r RayInfo) WithHeight(h float64) RayInfo {
	r.H = h
	r.C1 = math.Min(1, math.Max(0, 0.5*(h+1)))

	switch {
	case r.W.Z > normalLimit:
		r.G1 = 1
	case r.W.Z <= 0:
		r.G1 = 0
	default:
		r.G1 = math.Pow(r.C1, r.Lambda)
	}
	return r
}

func invC1(u float64) float64 {
	return math.Max(-1, math.Min(1, 2*u-1))
}

// SampleHeight samples the height of the next intersection along the ray, or
// +Inf when the ray leaves the surface
func SampleHeight(r RayInfo, u float64) float64 {
	if r.W.Z > normalLimit {
		return math.Inf(1)
	}
	if r.W.Z < -normalLimit {
		return invC1(u * r.C1)
	}
	if math.Abs(r.W.Z) < grazingLimit {
		return r.H
	}

	// Probability of leaving the microsurface
	if u > 1-r.G1 {
		return math.Inf(1)
	}

	return invC1(r.C1 / math.Pow(1-u, 1/r.Lambda))
}
