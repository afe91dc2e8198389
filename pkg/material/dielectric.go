package material

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/scene"
)

// sampleDielectric chooses between mirror reflection and refraction by the
// Fresnel reflectance. Refraction bends by the mean index over the query.
func sampleDielectric(data Data, m *scene.Dielectric, smp core.Sampler) BSDFSample {
	n := data.Frame.Normal()
	cosI := data.WI.Dot(n)
	entering := cosI < 0

	fr := fresnel(data, &m.Boundary, data.WI, n)
	f := fr.Monochromatic()

	if smp.Next() <= f {
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

	etaExt := m.ExtIOR.Sample(data.Query).Eta.Monochromatic()
	etaInt := m.IntIOR.Sample(data.Query).Eta.Monochromatic()
	etaI, etaT, medium := etaExt, etaInt, m.IntMedium
	facing := n
	if !entering {
		etaI, etaT, medium = etaInt, etaExt, m.ExtMedium
		facing = n.Negate()
	}

	wo, ok := refractVector(data.WI, facing, etaI/etaT)
	if !ok {
		return BSDFSample{}
	}

	transmittance := m.Transmittance.Evaluate(data.Query, data.Tex)
	return BSDFSample{
		Direction:   wo,
		Weight:      transmittance.Mul(fr.OneMinus()).Scale(1 / (1 - f)),
		PDF:         1 - f,
		Eta:         etaT / etaI,
		Properties:  Transmission,
		MediumIndex: medium,
		Delta:       true,
	}
}

// refractVector bends the unit direction uv through a surface with normal n
// facing uv, by Snell's law. It fails on total internal reflection.
func refractVector(uv, n core.Vec3, etaiOverEtat float64) (core.Vec3, bool) {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	k := 1.0 - rOutPerp.LengthSquared()
	if k < 0 {
		return core.Vec3{}, false
	}
	rOutParallel := n.Multiply(-math.Sqrt(k))
	return rOutPerp.Add(rOutParallel).Normalize(), true
}
