package microfacet

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

// Conductor describes one rough conductor interface for a shading event
type Conductor struct {
	Query  spectrum.Query
	Alpha  core.Vec2
	ExtIOR spectrum.IndexSample
	IntIOR spectrum.IndexSample
	Film   *spectrum.ThinfilmEval

	// Trace, when set, is called after every scattering event of a walk with
	// the scattering order and the energy carried so far
	Trace func(order int, energy spectrum.Response)
}

func (c *Conductor) fresnel(cosI float64) spectrum.Response {
	return spectrum.Conductor(c.Query, cosI, c.ExtIOR, c.IntIOR, c.Film)
}

func (c *Conductor) trace(order int, energy spectrum.Response) {
	if c.Trace != nil {
		c.Trace(order, energy)
	}
}

// samplePhase picks the next direction after hitting a microfacet. wi points
// back along the direction the particle arrived from.
func (c *Conductor) samplePhase(smp core.Sampler, wi core.Vec3) (core.Vec3, spectrum.Response) {
	u1 := smp.Next()
	u2 := smp.Next()
	wm := SampleVNDF(wi, c.Alpha, core.NewVec2(u1, u2))
	wo := wm.Multiply(2 * wi.Dot(wm)).Subtract(wi)
	return wo, c.fresnel(wi.Dot(wm))
}

// evalPhase is the density of scattering the particle into wo, weighted by Fresnel
func (c *Conductor) evalPhase(r RayInfo, wo core.Vec3) spectrum.Response {
	if r.W.Z > normalLimit {
		return spectrum.Zero()
	}

	wi := r.W.Negate()
	wh := wi.Add(wo).Normalize()
	if wh.Z < 0 {
		return spectrum.Zero()
	}
	cosH := wi.Dot(wh)
	if cosH <= 0 {
		return spectrum.Zero()
	}

	projectedArea := 1.0
	if r.W.Z >= -normalLimit {
		projectedArea = r.Lambda * r.W.Z
	}

	return c.fresnel(cosH).Scale(D(wh, c.Alpha) / 4 / projectedArea)
}

func (c *Conductor) misWeight(wi, wo core.Vec3) float64 {
	if wi == wo.Negate() {
		return 1
	}
	wh := wi.Add(wo).Normalize()
	if wh.Z <= 0 {
		wh = wh.Negate()
	}
	return D(wh, c.Alpha)
}

// Sample runs one random walk from the outward direction wi and returns the
// escaping direction with the energy it carries. The energy is zero when the
// walk exceeds ScatteringOrderMax or degenerates numerically.
func (c *Conductor) Sample(smp core.Sampler, wi core.Vec3) (core.Vec3, spectrum.Response) {
	energy := spectrum.Constant(1)
	ray := NewRayInfo(wi.Negate(), c.Alpha).WithHeight(1)

	order := 0
	for {
		ray = ray.WithHeight(SampleHeight(ray, smp.Next()))
		if ray.Escaped() {
			break
		}
		order++

		wo, weight := c.samplePhase(smp, ray.W.Negate())
		ray = ray.WithDirection(wo, c.Alpha).WithHeight(ray.H)
		energy = energy.Mul(weight)
		c.trace(order, energy)

		if math.IsNaN(ray.H) || math.IsNaN(ray.W.X) || order > ScatteringOrderMax {
			c.trace(order, spectrum.Zero())
			return core.NewVec3(0, 0, 1), spectrum.Zero()
		}
	}

	return ray.W, energy
}

// Evaluate estimates the cosine-weighted reflectance from wi into wo, both
// outward. Single scattering is closed form with a fixed MIS weight of one half;
// higher orders come from next event estimation along one walk, weighted
// against the phase function strategy with the balance heuristic.
func (c *Conductor) Evaluate(smp core.Sampler, wi, wo core.Vec3) spectrum.Response {
	if wi.Z <= 0 || wo.Z <= 0 {
		return spectrum.Zero()
	}

	ray := NewRayInfo(wi.Negate(), c.Alpha).WithHeight(1)
	shadowing := NewRayInfo(wo, c.Alpha)
	energy := spectrum.Constant(1)

	wh := wi.Add(wo).Normalize()
	g2 := 1 / (1 + (-ray.Lambda - 1) + shadowing.Lambda)
	single := c.fresnel(ray.W.Negate().Dot(wh)).Scale(D(wh, c.Alpha) * g2 / (4 * wi.Z))

	multiple := spectrum.Zero()
	wiMIS := 0.0

	for order := 1; order <= ScatteringOrderMax; order++ {
		ray = ray.WithHeight(SampleHeight(ray, smp.Next()))
		if ray.Escaped() {
			break
		}

		if order > 1 {
			phase := c.evalPhase(ray, wo)
			shadowing = shadowing.WithHeight(ray.H)
			contribution := energy.Mul(phase).Scale(shadowing.G1)

			mis := wiMIS / (wiMIS + c.misWeight(ray.W.Negate(), wo))
			if contribution.Valid() && !math.IsNaN(mis) {
				multiple = multiple.Add(contribution.Scale(mis))
			}
		}

		next, weight := c.samplePhase(smp, ray.W.Negate())
		ray = ray.WithDirection(next, c.Alpha).WithHeight(ray.H)
		energy = energy.Mul(weight)
		c.trace(order, energy)

		if order == 1 {
			wiMIS = c.misWeight(wi, ray.W)
		}

		if math.IsNaN(ray.H) || math.IsNaN(ray.W.X) {
			return spectrum.Zero()
		}
	}

	return single.Scale(0.5).Add(multiple)
}
