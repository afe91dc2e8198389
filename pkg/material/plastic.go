package material

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/microfacet"
	"github.com/df07/go-spectral-kernel/pkg/scene"
)

// A plastic with mean roughness at or below the scene threshold has a mirror
// coating over its diffuse base
func plasticIsDelta(m *scene.Plastic, s *scene.Scene) bool {
	return 0.5*(m.Roughness.X+m.Roughness.Y) <= s.DeltaAlphaThreshold
}

func samplePlastic(data Data, m *scene.Plastic, s *scene.Scene, smp core.Sampler) BSDFSample {
	if plasticIsDelta(m, s) {
		return sampleDeltaPlastic(data, m, smp)
	}

	frame := data.facingFrame()
	wiLocal := frame.ToLocal(data.WI.Negate())
	mh := frame.FromLocal(microfacet.SampleVNDF(wiLocal, m.Roughness, smp.Next2D()))

	f := fresnel(data, &m.Boundary, data.WI, mh).Monochromatic()

	var wo core.Vec3
	var properties Properties
	if smp.Next() < f {
		wo = core.Reflect(data.WI, mh).Normalize()
		properties = Reflection
	} else {
		wo = core.SampleCosineDistribution(smp.Next2D(), frame.Normal(), 1)
		properties = Reflection | Diffuse
	}

	eval := evaluatePlastic(data, wo, m, s)
	if !eval.Valid() {
		return BSDFSample{}
	}
	return BSDFSample{
		Direction:   wo,
		Weight:      eval.Weight,
		PDF:         eval.PDF,
		Eta:         1,
		Properties:  properties,
		MediumIndex: data.MediumIndex,
	}
}

// sampleDeltaPlastic picks the mirror coating with probability equal to its
// Fresnel reflectance at the normal, otherwise the diffuse base
func sampleDeltaPlastic(data Data, m *scene.Plastic, smp core.Sampler) BSDFSample {
	n := data.facingFrame().Normal()
	fr := fresnel(data, &m.Boundary, data.WI, n)
	f := fr.Monochromatic()

	if smp.Next() < f {
		specular := m.Specular.Evaluate(data.Query, data.Tex)
		return BSDFSample{
			Direction:   core.Reflect(data.WI, n).Normalize(),
			Weight:      specular.Mul(fr).Scale(1 / f),
			PDF:         f,
			Eta:         1,
			Properties:  Reflection,
			MediumIndex: data.MediumIndex,
			Delta:       true,
		}
	}

	wo := core.SampleCosineDistribution(smp.Next2D(), n, 1)
	cosO := n.Dot(wo)
	if cosO <= epsilon {
		return BSDFSample{}
	}
	diffuse := m.Diffuse.Evaluate(data.Query, data.Tex)
	return BSDFSample{
		Direction:   wo,
		Weight:      diffuse.Mul(fr.OneMinus()).Scale(1 / (1 - f)),
		PDF:         cosO / math.Pi * (1 - f),
		Eta:         1,
		Properties:  Reflection | Diffuse,
		MediumIndex: data.MediumIndex,
	}
}

// evaluateDeltaPlastic covers the diffuse base only; the mirror lobe has no
// density off its reflection direction
func evaluateDeltaPlastic(data Data, wo core.Vec3, m *scene.Plastic) BSDFEval {
	n := data.facingFrame().Normal()
	cosO := n.Dot(wo)
	if cosO <= epsilon {
		return BSDFEval{}
	}

	fr := fresnel(data, &m.Boundary, data.WI, n)
	transmitted := fr.OneMinus()
	pdf := cosO / math.Pi * transmitted.Monochromatic()
	if pdf <= 0 {
		return BSDFEval{}
	}

	diffuse := m.Diffuse.Evaluate(data.Query, data.Tex)
	bsdf := diffuse.Mul(transmitted).Scale(cosO / math.Pi)
	return BSDFEval{
		Func:   diffuse.Mul(transmitted).Scale(1 / math.Pi),
		BSDF:   bsdf,
		Weight: bsdf.Scale(1 / pdf),
		PDF:    pdf,
	}
}

func evaluatePlastic(data Data, wo core.Vec3, m *scene.Plastic, s *scene.Scene) BSDFEval {
	if plasticIsDelta(m, s) {
		return evaluateDeltaPlastic(data, wo, m)
	}

	frame := data.facingFrame()
	n := frame.Normal()
	nDotO := n.Dot(wo)
	nDotI := -n.Dot(data.WI)
	mh := wo.Subtract(data.WI).Normalize()
	mDotO := mh.Dot(wo)
	if nDotO <= epsilon || nDotI <= epsilon || mDotO <= epsilon {
		return BSDFEval{}
	}

	fr := fresnel(data, &m.Boundary, data.WI, mh)
	f := fr.Monochromatic()

	wiLocal := frame.ToLocal(data.WI.Negate())
	woLocal := frame.ToLocal(wo)
	ggx := microfacet.Evaluate(frame.ToLocal(mh), wiLocal, woLocal, m.Roughness)
	j := 1 / (4 * mDotO)

	pdf := nDotO/math.Pi*(1-f) + ggx.PDF*j*f
	if pdf <= epsilon {
		return BSDFEval{}
	}

	diffuse := m.Diffuse.Evaluate(data.Query, data.Tex)
	specular := m.Specular.Evaluate(data.Query, data.Tex)
	specularTerm := ggx.NDF * ggx.Visibility / (4 * nDotI)

	bsdf := diffuse.Mul(fr.OneMinus()).Scale(nDotO / math.Pi).Add(specular.Mul(fr).Scale(specularTerm))
	return BSDFEval{
		Func:   bsdf.Scale(1 / nDotO),
		BSDF:   bsdf,
		Weight: bsdf.Scale(1 / pdf),
		PDF:    pdf,
	}
}

func pdfPlastic(data Data, wo core.Vec3, m *scene.Plastic, s *scene.Scene) float64 {
	if plasticIsDelta(m, s) {
		n := data.facingFrame().Normal()
		cosO := n.Dot(wo)
		if cosO <= epsilon {
			return 0
		}
		fr := fresnel(data, &m.Boundary, data.WI, n)
		return cosO / math.Pi * (1 - fr.Monochromatic())
	}

	frame := data.facingFrame()
	n := frame.Normal()
	mh := wo.Subtract(data.WI).Normalize()
	mDotO := mh.Dot(wo)
	nDotO := n.Dot(wo)
	if nDotO <= epsilon || mDotO <= epsilon {
		return 0
	}

	f := fresnel(data, &m.Boundary, data.WI, mh).Monochromatic()
	j := 1 / (4 * mDotO)
	vndf := microfacet.VNDFPDF(frame.ToLocal(data.WI.Negate()), frame.ToLocal(mh), m.Roughness)
	return nDotO/math.Pi*(1-f) + vndf*j*f
}

