// Package lights samples and evaluates emitters: radiance toward a point, next
// event estimation, emission for light tracing and emitter selection.
//
// Directions passed to GetRadiance, PDFInDist and EvaluateOutDist, and returned
// by SampleIn, point from the receiving point toward the emitter. Directions
// returned by SampleEmission travel away from the emitter into the scene.
package lights

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

const epsilon = 1e-6

// RadianceQuery describes where emitted radiance is observed from
type RadianceQuery struct {
	Source          core.Vec3 // Receiving point, for area emitters
	Target          core.Vec3 // Point on the emitter, for area emitters
	UV              core.Vec2 // Texture coordinate at Target
	Direction       core.Vec3 // Toward the emitter, for distant emitters
	DirectlyVisible bool      // Seen by the camera without a bounce in between
}

// Radiance is emitted radiance together with its sampling densities
type Radiance struct {
	Value     spectrum.Response
	PDFArea   float64 // Density of the emitting point, per unit area
	PDFDir    float64 // Density of the direction from the receiver, per solid angle
	PDFDirOut float64 // Density of emitting this ray when light tracing
}

// Sample is a point and direction sampled on an emitter
type Sample struct {
	Value         spectrum.Response
	Origin        core.Vec3
	Normal        core.Vec3
	Direction     core.Vec3
	Barycentric   core.Vec3
	ImageUV       core.Vec2
	PDFArea       float64
	PDFDir        float64
	PDFDirOut     float64
	PDFSample     float64 // Probability of selecting the emitter
	EmitterIndex  int
	TriangleIndex int // -1 for distant emitters
	MediumIndex   int
	IsDelta       bool
	IsDistant     bool
}

// CombinedPDF is the density used for next event estimation weights
func (s Sample) CombinedPDF() float64 {
	return s.PDFDir * s.PDFSample
}

// Valid reports whether the sample carries energy with a usable density
func (s Sample) Valid() bool {
	return !s.Value.IsZero() && s.PDFDir > 0 && !math.IsInf(s.PDFDir, 0) && !math.IsNaN(s.PDFDir)
}

func zeroSample() Sample {
	return Sample{EmitterIndex: -1, TriangleIndex: -1, MediumIndex: -1}
}
