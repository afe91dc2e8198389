package material

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/microfacet"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

func conductorIsDelta(m *scene.Conductor, s *scene.Scene) bool {
	return math.Max(m.Roughness.X, m.Roughness.Y) <= s.DeltaAlphaThreshold
}

func walker(data Data, m *scene.Conductor) *microfacet.Conductor {
	q := data.Query
	return &microfacet.Conductor{
		Query:  q,
		Alpha:  m.Roughness,
		ExtIOR: m.ExtIOR.Sample(q),
		IntIOR: m.IntIOR.Sample(q),
		Film:   m.Thinfilm.Evaluate(q, data.Tex),
	}
}

func sampleConductor(data Data, m *scene.Conductor, s *scene.Scene, smp core.Sampler) BSDFSample {
	frame := data.facingFrame()
	reflectance := m.Reflectance.Evaluate(data.Query, data.Tex)

	if conductorIsDelta(m, s) {
		n := frame.Normal()
		return BSDFSample{
			Direction:   core.Reflect(data.WI, n).Normalize(),
			Weight:      fresnel(data, &m.Boundary, data.WI, n).Mul(reflectance),
			PDF:         1,
			Eta:         1,
			Properties:  Reflection,
			MediumIndex: data.MediumIndex,
			Delta:       true,
		}
	}

	wi := frame.ToLocal(data.WI.Negate())
	if wi.Z <= epsilon {
		return BSDFSample{}
	}

	wo, energy := walker(data, m).Sample(smp, wi)
	pdf := microfacet.ReflectionPDF(wi, wo, m.Roughness)
	if pdf <= 0 || energy.IsZero() {
		return BSDFSample{}
	}

	return BSDFSample{
		Direction:   frame.FromLocal(wo).Normalize(),
		Weight:      energy.Mul(reflectance),
		PDF:         pdf,
		Eta:         1,
		Properties:  Reflection,
		MediumIndex: data.MediumIndex,
	}
}

// evaluateConductor alternates between the walk from wi and the reciprocal walk
// from wo, each doubled, so the two halves of the MIS partition average out
func evaluateConductor(data Data, wo core.Vec3, m *scene.Conductor, s *scene.Scene, smp core.Sampler) BSDFEval {
	if conductorIsDelta(m, s) {
		return BSDFEval{}
	}

	frame := data.facingFrame()
	woLocal := frame.ToLocal(wo)
	wiLocal := frame.ToLocal(data.WI.Negate())
	if woLocal.Z <= epsilon || wiLocal.Z <= epsilon {
		return BSDFEval{}
	}

	w := walker(data, m)
	var bsdf spectrum.Response
	if smp.Next() > 0.5 {
		bsdf = w.Evaluate(smp, wiLocal, woLocal).Scale(2)
	} else {
		bsdf = w.Evaluate(smp, woLocal, wiLocal).Scale(2 * woLocal.Z / wiLocal.Z)
	}
	bsdf = bsdf.Mul(m.Reflectance.Evaluate(data.Query, data.Tex))

	pdf := microfacet.ReflectionPDF(wiLocal, woLocal, m.Roughness)
	result := BSDFEval{
		Func: bsdf.Scale(1 / woLocal.Z),
		BSDF: bsdf,
		PDF:  pdf,
	}
	if pdf > 0 {
		result.Weight = bsdf.Scale(1 / pdf)
	}
	return result
}

func pdfConductor(data Data, wo core.Vec3, m *scene.Conductor, s *scene.Scene) float64 {
	if conductorIsDelta(m, s) {
		return 0
	}
	frame := data.facingFrame()
	woLocal := frame.ToLocal(wo)
	wiLocal := frame.ToLocal(data.WI.Negate())
	if woLocal.Z <= epsilon || wiLocal.Z <= epsilon {
		return 0
	}
	return microfacet.ReflectionPDF(wiLocal, woLocal, m.Roughness)
}
