// Package microfacet implements the anisotropic GGX distribution, Smith masking
// and the multiple-scattering random walk over a rough conductor height field.
//
// All directions are in the local shading frame with the macro normal along +Z.
package microfacet

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

const (
	// ScatteringOrderMax bounds the number of bounces a walk may take
	ScatteringOrderMax = 16

	// Directions closer than this to the normal are treated as exactly normal
	normalLimit = 0.9999
	// Directions with |z| below this are treated as exactly grazing
	grazingLimit = 0.0001
)

// D is the anisotropic GGX normal distribution
func D(wm core.Vec3, alpha core.Vec2) float64 {
	if wm.Z <= 0 {
		return 0
	}

	slopeX := -wm.X / wm.Z
	slopeY := -wm.Y / wm.Z

	tmp := 1 + slopeX*slopeX/(alpha.X*alpha.X) + slopeY*slopeY/(alpha.Y*alpha.Y)
	p22 := 1 / (math.Pi * alpha.X * alpha.Y) / (tmp * tmp)

	z2 := wm.Z * wm.Z
	return p22 / (z2 * z2)
}

// Lambda is the Smith auxiliary function for direction w
func Lambda(w core.Vec3, alpha core.Vec2) float64 {
	return NewRayInfo(w, alpha).Lambda
}

// G1 is the Smith masking probability of w on the surface top
func G1(w core.Vec3, alpha core.Vec2) float64 {
	if w.Z <= 0 {
		return 0
	}
	return 1 / (1 + Lambda(w, alpha))
}

// G2 is the height-correlated masking-shadowing for two upper-hemisphere directions
func G2(wi, wo core.Vec3, alpha core.Vec2) float64 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	return 1 / (1 + Lambda(wi, alpha) + Lambda(wo, alpha))
}

// SampleP22 samples a visible slope of the unit-roughness distribution for an
// incident direction at polar angle thetaI
func SampleP22(thetaI, u1, u2 float64) core.Vec2 {
	if thetaI < grazingLimit {
		r := math.Sqrt(u1 / (1 - u1))
		phi := 2 * math.Pi * u2
		return core.NewVec2(r*math.Cos(phi), r*math.Sin(phi))
	}

	sinThetaI, cosThetaI := math.Sincos(thetaI)
	tanThetaI := sinThetaI / cosThetaI

	projectedArea := 0.5 * (cosThetaI + 1)
	if projectedArea < grazingLimit || math.IsNaN(projectedArea) {
		return core.Vec2{}
	}
	c := 1 / projectedArea

	a := 2*u1/cosThetaI/c - 1
	b := tanThetaI
	tmp := 1 / (a*a - 1)

	d := math.Sqrt(math.Max(0, b*b*tmp*tmp-(a*a-b*b)*tmp))
	slopeX1 := b*tmp - d
	slopeX2 := b*tmp + d

	var slope core.Vec2
	if a < 0 || slopeX2 > 1/tanThetaI {
		slope.X = slopeX1
	} else {
		slope.X = slopeX2
	}

	var s, u float64
	if u2 > 0.5 {
		s = 1
		u = 2 * (u2 - 0.5)
	} else {
		s = -1
		u = 2 * (0.5 - u2)
	}
	z := (u * (u*(u*0.27385-0.73369) + 0.46341)) / (u*(u*(u*0.093073+0.309420)-1.000000) + 0.597999)
	slope.Y = s * z * math.Sqrt(1+slope.X*slope.X)

	return slope
}

// SampleVNDF samples a microfacet normal visible from wi
func SampleVNDF(wi core.Vec3, alpha core.Vec2, rnd core.Vec2) core.Vec3 {
	// Stretch to the unit roughness configuration
	wi11 := core.NewVec3(alpha.X*wi.X, alpha.Y*wi.Y, wi.Z).Normalize()
	slope11 := SampleP22(math.Acos(math.Max(-1, math.Min(1, wi11.Z))), rnd.X, rnd.Y)

	// Rotate to the view azimuth and unstretch
	sinPhi, cosPhi := math.Sincos(math.Atan2(wi11.Y, wi11.X))
	slopeX := (cosPhi*slope11.X - sinPhi*slope11.Y) * alpha.X
	slopeY := (sinPhi*slope11.X + cosPhi*slope11.Y) * alpha.Y

	if math.IsNaN(slopeX) || math.IsInf(slopeX, 0) {
		if wi.Z > 0 {
			return core.NewVec3(0, 0, 1)
		}
		return core.NewVec3(wi.X, wi.Y, 0).Normalize()
	}

	return core.NewVec3(-slopeX, -slopeY, 1).Normalize()
}

// VNDFPDF is the density of SampleVNDF returning wm
func VNDFPDF(wi, wm core.Vec3, alpha core.Vec2) float64 {
	if wi.Z <= 0 {
		return 0
	}
	return G1(wi, alpha) * math.Max(0, wi.Dot(wm)) * D(wm, alpha) / wi.Z
}

// Eval is the microfacet specular reflection terms for a half vector
type Eval struct {
	NDF        float64
	Visibility float64
	PDF        float64 // Density of the half vector under VNDF sampling from wi
}

// Evaluate returns the GGX terms of reflecting wi into wo about wm
func Evaluate(wm, wi, wo core.Vec3, alpha core.Vec2) Eval {
	return Eval{
		NDF:        D(wm, alpha),
		Visibility: G2(wi, wo, alpha),
		PDF:        VNDFPDF(wi, wm, alpha),
	}
}

// ReflectionPDF is the density of wo when it is produced by reflecting wi about
// a VNDF sampled normal. For a multiple-scattering walk it only covers the
// first bounce.
func ReflectionPDF(wi, wo core.Vec3, alpha core.Vec2) float64 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	wh := wi.Add(wo).Normalize()
	return G1(wi, alpha) * D(wh, alpha) / (4 * wi.Z)
}
