package material

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/scene"
)

func sampleDiffuse(data Data, m *scene.Diffuse, smp core.Sampler) BSDFSample {
	n := data.facingFrame().Normal()
	wo := core.SampleCosineDistribution(smp.Next2D(), n, 1)

	cosO := n.Dot(wo)
	if cosO <= epsilon {
		return BSDFSample{}
	}

	return BSDFSample{
		Direction:   wo,
		Weight:      m.Reflectance.Evaluate(data.Query, data.Tex),
		PDF:         cosO / math.Pi,
		Eta:         1,
		Properties:  Reflection | Diffuse,
		MediumIndex: data.MediumIndex,
	}
}

func evaluateDiffuse(data Data, wo core.Vec3, m *scene.Diffuse) BSDFEval {
	cosO := data.facingFrame().Normal().Dot(wo)
	if cosO <= epsilon {
		return BSDFEval{}
	}

	reflectance := m.Reflectance.Evaluate(data.Query, data.Tex)
	return BSDFEval{
		Func:   reflectance.Scale(1 / math.Pi),
		BSDF:   reflectance.Scale(cosO / math.Pi),
		Weight: reflectance,
		PDF:    cosO / math.Pi,
	}
}

func pdfDiffuse(data Data, wo core.Vec3) float64 {
	cosO := data.facingFrame().Normal().Dot(wo)
	if cosO <= epsilon {
		return 0
	}
	return cosO / math.Pi
}
