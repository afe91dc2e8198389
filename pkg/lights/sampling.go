package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

// SampleIn samples a point on the emitter as seen from a shading point, for
// next event estimation. PDFSample is left for the caller.
func SampleIn(em scene.Emitter, q spectrum.Query, from core.Vec3, s *scene.Scene, smp core.Sampler) Sample {
	result := zeroSample()
	switch e := em.(type) {
	case *scene.AreaEmitter:
		tri := s.Triangle(e)
		result.Barycentric = core.RandomBarycentric(smp.Next2D())
		result.Origin = geometry.LerpPos(s.Vertices, tri, result.Barycentric)
		result.Normal = geometry.LerpNormal(s.Vertices, tri, result.Barycentric)
		result.Direction = result.Origin.Subtract(from).Normalize()
		r := GetRadiance(em, q, RadianceQuery{
			Source: from,
			Target: result.Origin,
			UV:     geometry.LerpUV(s.Vertices, tri, result.Barycentric),
		}, s)
		result.setRadiance(r)

	case *scene.DirectionalEmitter:
		var disk core.Vec2
		if e.AngularSize > 0 {
			u, v := core.OrthonormalBasis(e.Direction)
			disk = core.SampleDisk(smp.Next2D())
			size := e.EquivalentDiskSize()
			result.Direction = e.Direction.
				Add(u.Multiply(disk.X * size)).
				Add(v.Multiply(disk.Y * size)).
				Normalize()
		} else {
			result.Direction = e.Direction
		}
		result.PDFArea = distantPDFArea(s)
		result.PDFDir = 1
		result.PDFDirOut = result.PDFArea
		result.Origin = from.Add(result.Direction.Multiply(geometry.DistanceToSphere(from, result.Direction, s.Bounds)))
		result.Normal = e.Direction.Negate()
		result.Value = spectrum.Validate("directional sample", e.Emission.Evaluate(q, diskToUV(disk)))

	case *scene.EnvironmentEmitter:
		img := e.Emission.Image
		uv, pdfImage, _ := img.Sample(smp.Next2D())
		if sinTheta(uv) <= epsilon {
			return result
		}
		result.ImageUV = uv
		result.Direction = geometry.UVToDirection(uv, img.Offset)
		result.Normal = result.Direction.Negate()
		result.Origin = from.Add(result.Direction.Multiply(geometry.DistanceToSphere(from, result.Direction, s.Bounds)))
		result.PDFDir = spectrum.ValidateFloat("environment pdf", pdfImage/(2*math.Pi*math.Pi*sinTheta(uv)))
		result.PDFArea = distantPDFArea(s)
		result.PDFDirOut = result.PDFArea * result.PDFDir
		result.Value = spectrum.Validate("environment sample", e.Emission.Evaluate(q, uv))

	default:
		panic(fmt.Sprintf("lights: unknown emitter %T", em))
	}
	return result
}

// SampleEmitterIndex picks an emitter proportionally to its power. A scene
// without emitters returns -1.
func SampleEmitterIndex(s *scene.Scene, smp core.Sampler) int {
	if s.EmitterDistribution == nil {
		return -1
	}
	return s.EmitterDistribution.Sample(smp.Next())
}

// DiscretePDF is the probability of SampleEmitterIndex choosing index
func DiscretePDF(s *scene.Scene, index int) float64 {
	if s.EmitterDistribution == nil {
		return 0
	}
	return s.EmitterDistribution.PDF(index)
}

// SampleEmitter samples the emitter at index from a shading point and fills in
// the selection probability and bookkeeping fields
func SampleEmitter(q spectrum.Query, index int, smp core.Sampler, from core.Vec3, s *scene.Scene) Sample {
	if index < 0 || index >= len(s.Emitters) {
		return zeroSample()
	}
	em := s.Emitters[index]
	result := SampleIn(em, q, from, s, smp)
	result.fill(em, index)
	result.PDFSample = DiscretePDF(s, index)
	return result
}

// SampleEmission selects an emitter and samples a ray leaving it, for light
// tracing. A scene without emitters returns an invalid sample.
func SampleEmission(s *scene.Scene, q spectrum.Query, smp core.Sampler) Sample {
	result := zeroSample()
	if s.EmitterDistribution == nil {
		return result
	}
	index, pdfSample := s.EmitterDistribution.SampleWithPDF(smp.Next())
	em := s.Emitters[index]

	switch e := em.(type) {
	case *scene.AreaEmitter:
		result = sampleAreaEmission(e, q, s, smp)
	case *scene.DirectionalEmitter:
		result = sampleDirectionalEmission(e, q, s, smp)
	case *scene.EnvironmentEmitter:
		result = sampleEnvironmentEmission(e, q, s, smp)
	default:
		panic(fmt.Sprintf("lights: unknown emitter %T", em))
	}

	result.fill(em, index)
	result.PDFSample = pdfSample
	return result
}

func sampleAreaEmission(e *scene.AreaEmitter, q spectrum.Query, s *scene.Scene, smp core.Sampler) Sample {
	result := zeroSample()
	tri := s.Triangle(e)
	result.Barycentric = core.RandomBarycentric(smp.Next2D())
	result.Origin = geometry.LerpPos(s.Vertices, tri, result.Barycentric)
	result.Normal = geometry.LerpNormal(s.Vertices, tri, result.Barycentric)

	switch e.Direction {
	case scene.EmitSingle:
		u, v := core.OrthonormalBasis(result.Normal)
		for {
			result.Direction = core.SampleCosineDistributionBasis(smp.Next2D(), result.Normal, u, v, e.Collimation)
			if result.Direction.Dot(result.Normal) > 0 {
				break
			}
		}
	case scene.EmitTwoSided:
		if smp.Next() > 0.5 {
			result.Normal = result.Normal.Negate()
		}
		result.Direction = core.SampleCosineDistribution(smp.Next2D(), result.Normal, e.Collimation)
	case scene.EmitOmni:
		result.Normal = core.SampleUniformSphere(smp.Next2D())
		result.Direction = result.Normal
	default:
		panic(fmt.Sprintf("lights: unknown emission direction %q", e.Direction))
	}

	uv := geometry.LerpUV(s.Vertices, tri, result.Barycentric)
	result.setRadiance(EvaluateOutLocal(e, q, uv, result.Normal, result.Direction, s))
	return result
}

func sampleDirectionalEmission(e *scene.DirectionalEmitter, q spectrum.Query, s *scene.Scene, smp core.Sampler) Sample {
	result := zeroSample()
	toScene := e.Direction.Negate()
	u, v := core.OrthonormalBasis(toScene)
	pos := core.SampleDisk(smp.Next2D())
	dir := core.SampleDisk(smp.Next2D())
	size := e.EquivalentDiskSize()

	result.Direction = toScene.
		Add(u.Multiply(dir.X * size)).
		Add(v.Multiply(dir.Y * size)).
		Normalize()
	result.Normal = toScene
	result.PDFArea = distantPDFArea(s)
	result.PDFDir = 1
	result.PDFDirOut = result.PDFArea
	result.Origin = diskOrigin(s.Bounds, u, v, pos, result.Direction, toScene)
	result.Value = spectrum.Validate("directional emission", e.Emission.Evaluate(q, diskToUV(dir)))
	return result
}

func sampleEnvironmentEmission(e *scene.EnvironmentEmitter, q spectrum.Query, s *scene.Scene, smp core.Sampler) Sample {
	result := zeroSample()
	img := e.Emission.Image
	uv, pdfImage, _ := img.Sample(smp.Next2D())
	sinT := sinTheta(uv)
	if pdfImage == 0 || sinT <= epsilon {
		result.Value = spectrum.Zero()
		return result
	}

	d := geometry.UVToDirection(uv, img.Offset).Negate()
	u, v := core.OrthonormalBasis(d)
	pos := core.SampleDisk(smp.Next2D())

	result.ImageUV = uv
	result.Direction = d
	result.Normal = d
	result.Origin = diskOrigin(s.Bounds, u, v, pos, d, d)
	result.PDFArea = distantPDFArea(s)
	result.PDFDir = spectrum.ValidateFloat("environment pdf", pdfImage/(2*math.Pi*math.Pi*sinT))
	result.PDFDirOut = result.PDFArea * result.PDFDir
	result.Value = spectrum.Validate("environment emission", e.Emission.Evaluate(q, uv))
	return result
}

// diskOrigin places a ray origin on the disk facing the scene bounds and moves
// it onto the bounding sphere
func diskOrigin(b geometry.BoundingSphere, u, v core.Vec3, pos core.Vec2, direction, toScene core.Vec3) core.Vec3 {
	origin := b.Center.Add(u.Multiply(pos.X).Add(v.Multiply(pos.Y)).Subtract(toScene).Multiply(b.Radius))
	return origin.Add(direction.Multiply(geometry.DistanceToSphere(origin, direction, b)))
}

func diskToUV(disk core.Vec2) core.Vec2 {
	return core.NewVec2(disk.X*0.5+0.5, disk.Y*0.5+0.5)
}

func (s *Sample) setRadiance(r Radiance) {
	s.Value = r.Value
	s.PDFArea = r.PDFArea
	s.PDFDir = r.PDFDir
	s.PDFDirOut = r.PDFDirOut
}

func (s *Sample) fill(em scene.Emitter, index int) {
	s.EmitterIndex = index
	s.MediumIndex = scene.CommonOf(em).MediumIndex
	s.IsDelta = scene.IsDelta(em)
	s.IsDistant = scene.IsDistant(em)
	s.TriangleIndex = -1
	if area, ok := em.(*scene.AreaEmitter); ok {
		s.TriangleIndex = int(area.Triangle)
	}
}
