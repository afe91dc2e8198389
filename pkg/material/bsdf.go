// Package material implements BSDF sampling and evaluation for every scene
// material class.
//
// Directions follow one convention throughout: Data.WI is the direction the
// path travels toward the surface, and outgoing directions point away from it.
package material

import (
	"fmt"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

// Cosines at or below this are treated as lying in the surface plane
const epsilon = 1e-6

// Properties describe the lobe a sample was drawn from
type Properties uint32

const (
	Reflection Properties = 1 << iota
	Transmission
	Diffuse
)

// Data is the per-hit input to the BSDF
type Data struct {
	WI          core.Vec3
	Frame       core.Frame
	Tex         core.Vec2
	Query       spectrum.Query
	MediumIndex int
}

// facingFrame returns the shading frame with its normal on the side WI arrives from
func (d Data) facingFrame() core.Frame {
	if d.WI.Dot(d.Frame.Normal()) <= 0 {
		return d.Frame
	}
	return core.NewFrameFromBasis(d.Frame.Tangent(), d.Frame.Bitangent().Negate(), d.Frame.Normal().Negate())
}

// BSDFSample is a sampled outgoing direction. Weight is the BSDF times cosine
// over the pdf. For delta lobes PDF is the discrete probability of the lobe and
// Delta is set.
type BSDFSample struct {
	Direction   core.Vec3
	Weight      spectrum.Response
	PDF         float64
	Eta         float64 // Relative index of refraction across the boundary
	Properties  Properties
	MediumIndex int
	Delta       bool
}

// Valid reports whether the sample carries a usable direction
func (s BSDFSample) Valid() bool {
	return s.PDF > 0
}

// BSDFEval is the BSDF for a fixed pair of directions
type BSDFEval struct {
	Func   spectrum.Response // BSDF value
	BSDF   spectrum.Response // BSDF times the outgoing cosine
	Weight spectrum.Response // BSDF / PDF
	PDF    float64
}

// Valid reports whether the pair of directions has non-zero density
func (e BSDFEval) Valid() bool {
	return e.PDF > 0
}

func unknownClass(mtl scene.Material) string {
	return fmt.Sprintf("material: unknown class %T", mtl)
}

// Sample draws an outgoing direction
func Sample(data Data, mtl scene.Material, s *scene.Scene, smp core.Sampler) BSDFSample {
	var result BSDFSample
	switch m := mtl.(type) {
	case *scene.Diffuse:
		result = sampleDiffuse(data, m, smp)
	case *scene.Plastic:
		result = samplePlastic(data, m, s, smp)
	case *scene.Conductor:
		result = sampleConductor(data, m, s, smp)
	case *scene.Dielectric:
		result = sampleDielectric(data, m, smp)
	default:
		panic(unknownClass(mtl))
	}

	result.Weight = spectrum.Validate("bsdf sample weight", result.Weight)
	result.PDF = spectrum.ValidateFloat("bsdf sample pdf", result.PDF)
	return result
}

// Evaluate returns the BSDF for the outgoing direction wo. The conductor
// estimate is stochastic and draws from smp.
func Evaluate(data Data, wo core.Vec3, mtl scene.Material, s *scene.Scene, smp core.Sampler) BSDFEval {
	var result BSDFEval
	switch m := mtl.(type) {
	case *scene.Diffuse:
		result = evaluateDiffuse(data, wo, m)
	case *scene.Plastic:
		result = evaluatePlastic(data, wo, m, s)
	case *scene.Conductor:
		result = evaluateConductor(data, wo, m, s, smp)
	case *scene.Dielectric:
		result = BSDFEval{}
	default:
		panic(unknownClass(mtl))
	}

	result.Func = spectrum.Validate("bsdf func", result.Func)
	result.BSDF = spectrum.Validate("bsdf", result.BSDF)
	result.Weight = spectrum.Validate("bsdf weight", result.Weight)
	result.PDF = spectrum.ValidateFloat("bsdf pdf", result.PDF)
	return result
}

// PDF returns the density of Sample producing wo
func PDF(data Data, wo core.Vec3, mtl scene.Material, s *scene.Scene) float64 {
	var pdf float64
	switch m := mtl.(type) {
	case *scene.Diffuse:
		pdf = pdfDiffuse(data, wo)
	case *scene.Plastic:
		pdf = pdfPlastic(data, wo, m, s)
	case *scene.Conductor:
		pdf = pdfConductor(data, wo, m, s)
	case *scene.Dielectric:
		pdf = 0
	default:
		panic(unknownClass(mtl))
	}
	return spectrum.ValidateFloat("bsdf pdf", pdf)
}

// IsDelta reports whether every lobe of the material is a Dirac delta
func IsDelta(mtl scene.Material, s *scene.Scene) bool {
	switch m := mtl.(type) {
	case *scene.Diffuse:
		return false
	case *scene.Plastic:
		return plasticIsDelta(m, s)
	case *scene.Conductor:
		return conductorIsDelta(m, s)
	case *scene.Dielectric:
		return true
	default:
		panic(unknownClass(mtl))
	}
}

// Albedo returns the dominant reflectance of the material at the hit
func Albedo(data Data, mtl scene.Material) spectrum.Response {
	switch m := mtl.(type) {
	case *scene.Diffuse:
		return m.Reflectance.Evaluate(data.Query, data.Tex)
	case *scene.Plastic:
		return m.Diffuse.Evaluate(data.Query, data.Tex)
	case *scene.Conductor:
		return m.Reflectance.Evaluate(data.Query, data.Tex)
	case *scene.Dielectric:
		return m.Transmittance.Evaluate(data.Query, data.Tex)
	default:
		panic(unknownClass(mtl))
	}
}

// fresnel evaluates the boundary of mtl for light travelling along wi onto a
// facet with normal n
func fresnel(data Data, b *scene.Boundary, wi, n core.Vec3) spectrum.Response {
	q := data.Query
	return spectrum.Fresnel(q, wi.Dot(n), b.ExtIOR.Sample(q), b.IntIOR.Sample(q), b.Thinfilm.Evaluate(q, data.Tex))
}
