package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

// GetRadiance evaluates the radiance an emitter sends toward a receiver
func GetRadiance(em scene.Emitter, q spectrum.Query, rq RadianceQuery, s *scene.Scene) Radiance {
	switch e := em.(type) {
	case *scene.AreaEmitter:
		return areaRadiance(e, q, rq, s)
	case *scene.DirectionalEmitter:
		if e.AngularSize <= 0 || rq.Direction.Dot(e.Direction) < e.AngularSizeCosine() {
			return Radiance{Value: spectrum.Zero()}
		}
		uv := geometry.DiskUV(e.Direction, rq.Direction, e.EquivalentDiskSize(), e.AngularSizeCosine())
		value := e.Emission.Evaluate(q, uv)
		if rq.DirectlyVisible {
			// Seen directly the sun is a disk of finite solid angle
			value = value.Scale(1.0 / e.SolidAngle())
		}
		pdfArea := distantPDFArea(s)
		return Radiance{
			Value:     spectrum.Validate("directional radiance", value),
			PDFArea:   pdfArea,
			PDFDir:    1,
			PDFDirOut: pdfArea,
		}
	case *scene.EnvironmentEmitter:
		return environmentRadiance(e, q, rq.Direction, s)
	default:
		panic(fmt.Sprintf("lights: unknown emitter %T", em))
	}
}

func areaRadiance(e *scene.AreaEmitter, q spectrum.Query, rq RadianceQuery, s *scene.Scene) Radiance {
	tri := s.Triangle(e)
	if e.Direction == scene.EmitSingle && tri.GeoN.Dot(rq.Target.Subtract(rq.Source)) >= 0 {
		return Radiance{Value: spectrum.Zero()}
	}

	dp := rq.Source.Subtract(rq.Target)
	pdfArea := 1.0 / tri.Area
	r := Radiance{PDFArea: pdfArea}
	if e.Direction == scene.EmitOmni {
		r.PDFDir = pdfArea * core.AreaToSolidAngle(dp, tri.GeoN, 1)
		r.PDFDirOut = pdfArea * emissionPDF(e, 1)
	} else {
		collimation := e.Collimation
		if rq.DirectlyVisible {
			collimation = 1
		}
		r.PDFDir = pdfArea * core.AreaToSolidAngle(dp, tri.GeoN, collimation)
		r.PDFDirOut = pdfArea * emissionPDF(e, tri.GeoN.Dot(dp.Normalize()))
	}
	r.Value = spectrum.Validate("area radiance", e.Emission.Evaluate(q, rq.UV))
	return r
}

func environmentRadiance(e *scene.EnvironmentEmitter, q spectrum.Query, direction core.Vec3, s *scene.Scene) Radiance {
	img := e.Emission.Image
	uv := geometry.DirectionToUV(direction, img.Offset)
	if sinTheta(uv) <= epsilon {
		return Radiance{Value: spectrum.Zero()}
	}
	pdfDir := equirectPDF(img, uv)
	pdfArea := distantPDFArea(s)
	return Radiance{
		Value:     spectrum.Validate("environment radiance", e.Emission.Evaluate(q, uv)),
		PDFArea:   pdfArea,
		PDFDir:    pdfDir,
		PDFDirOut: pdfArea * pdfDir,
	}
}

// EvaluateOutLocal evaluates an area emitter emitting from a point with the
// given normal along direction. A direction the emitter does not radiate into
// returns zero radiance.
func EvaluateOutLocal(em scene.Emitter, q spectrum.Query, uv core.Vec2, normal, direction core.Vec3, s *scene.Scene) Radiance {
	e, ok := em.(*scene.AreaEmitter)
	if !ok {
		panic(fmt.Sprintf("lights: %T is not a local emitter", em))
	}

	pdfDir := emissionPDF(e, normal.Dot(direction))
	if pdfDir <= 0 {
		return Radiance{Value: spectrum.Zero()}
	}
	pdfArea := PDFArea(em, s)
	return Radiance{
		Value:     spectrum.Validate("area emission", e.Emission.Evaluate(q, uv)),
		PDFArea:   pdfArea,
		PDFDir:    pdfDir,
		PDFDirOut: pdfDir * pdfArea,
	}
}

// EvaluateOutDist evaluates a distant emitter seen along direction
func EvaluateOutDist(em scene.Emitter, q spectrum.Query, direction core.Vec3, s *scene.Scene) Radiance {
	switch e := em.(type) {
	case *scene.DirectionalEmitter:
		uv := geometry.DiskUV(e.Direction, direction, e.EquivalentDiskSize(), e.AngularSizeCosine())
		pdfArea := distantPDFArea(s)
		return Radiance{
			Value:     spectrum.Validate("directional emission", e.Emission.Evaluate(q, uv)),
			PDFArea:   pdfArea,
			PDFDir:    1,
			PDFDirOut: pdfArea,
		}
	case *scene.EnvironmentEmitter:
		return environmentRadiance(e, q, direction, s)
	case *scene.AreaEmitter:
		panic("lights: area emitter is not distant")
	default:
		panic(fmt.Sprintf("lights: unknown emitter %T", em))
	}
}

// PDFInDist is the solid angle density of sampling direction toward a distant emitter
func PDFInDist(em scene.Emitter, direction core.Vec3, s *scene.Scene) float64 {
	switch e := em.(type) {
	case *scene.DirectionalEmitter:
		if e.AngularSize <= 0 {
			if direction == e.Direction {
				return 1
			}
			return 0
		}
		if direction.Dot(e.Direction) >= e.AngularSizeCosine() {
			return 1
		}
		return 0
	case *scene.EnvironmentEmitter:
		img := e.Emission.Image
		return equirectPDF(img, geometry.DirectionToUV(direction, img.Offset))
	case *scene.AreaEmitter:
		panic("lights: area emitter is not distant")
	default:
		panic(fmt.Sprintf("lights: unknown emitter %T", em))
	}
}

// PDFArea is the area density of sampling a point on an area emitter
func PDFArea(em scene.Emitter, s *scene.Scene) float64 {
	e, ok := em.(*scene.AreaEmitter)
	if !ok {
		panic(fmt.Sprintf("lights: %T is not a local emitter", em))
	}
	return 1.0 / s.Triangle(e).Area
}

// emissionPDF is the solid angle density of the emitted direction, where cosTheta
// is measured against the emitter normal
func emissionPDF(e *scene.AreaEmitter, cosTheta float64) float64 {
	switch e.Direction {
	case scene.EmitSingle:
		if cosTheta <= 0 {
			return 0
		}
		return lobePDF(cosTheta, e.Collimation)
	case scene.EmitTwoSided:
		return 0.5 * lobePDF(math.Abs(cosTheta), e.Collimation)
	case scene.EmitOmni:
		return 1.0 / (4.0 * math.Pi)
	default:
		panic(fmt.Sprintf("lights: unknown emission direction %q", e.Direction))
	}
}

// lobePDF matches core.SampleCosineDistribution
func lobePDF(cosTheta, collimation float64) float64 {
	if collimation == 1 {
		return cosTheta / math.Pi
	}
	return (collimation + 1) / (2 * math.Pi) * math.Pow(cosTheta, collimation)
}

// equirectPDF converts an image density to solid angle. The Jacobian of the
// equirectangular mapping is 2π²sinθ.
func equirectPDF(img *texture.Image, uv core.Vec2) float64 {
	sinT := sinTheta(uv)
	if sinT <= epsilon {
		return 0
	}
	return spectrum.ValidateFloat("environment pdf", img.PDF(uv)/(2*math.Pi*math.Pi*sinT))
}

func sinTheta(uv core.Vec2) float64 {
	return math.Sin(uv.Y * math.Pi)
}

func distantPDFArea(s *scene.Scene) float64 {
	return 1.0 / s.Bounds.Area()
}
