package scene

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

// Emitter is a closed set of light classes: *AreaEmitter, *DirectionalEmitter
// and *EnvironmentEmitter.
type Emitter interface {
	Class() EmitterClass
	common() *EmitterCommon
}

type EmitterClass string

const (
	ClassArea        EmitterClass = "area"
	ClassDirectional EmitterClass = "directional"
	ClassEnvironment EmitterClass = "environment"
)

// EmissionDirection controls which side of an area emitter radiates
type EmissionDirection string

const (
	EmitSingle   EmissionDirection = "single"
	EmitTwoSided EmissionDirection = "two_sided"
	EmitOmni     EmissionDirection = "omni"
)

// EmitterCommon holds the fields every emitter class carries
type EmitterCommon struct {
	Emission    texture.SpectralImage
	Weight      float64 // Selection weight, proportional to emitted power
	MediumIndex int     // -1 for none
}

// AreaEmitter radiates from one scene triangle
type AreaEmitter struct {
	EmitterCommon
	Triangle    uint32
	Direction   EmissionDirection
	Collimation float64 // Exponent of the emitted cosine lobe, 1 is Lambertian
}

// DirectionalEmitter is a distant light covering a small disk of the sky
type DirectionalEmitter struct {
	EmitterCommon
	Direction   core.Vec3 // Unit vector pointing toward the light
	AngularSize float64   // Apex angle of the cone in radians, 0 for a delta light
}

// NewDirectionalEmitter normalizes the direction and clamps the angular size
func NewDirectionalEmitter(common EmitterCommon, direction core.Vec3, angularSize float64) *DirectionalEmitter {
	return &DirectionalEmitter{
		EmitterCommon: common,
		Direction:     direction.Normalize(),
		AngularSize:   math.Max(0, angularSize),
	}
}

func (em *DirectionalEmitter) halfAngle() float64 {
	return 0.5 * math.Max(0, em.AngularSize)
}

// AngularSizeCosine is the cosine of the cone half-angle
func (em *DirectionalEmitter) AngularSizeCosine() float64 { return math.Cos(em.halfAngle()) }

// EquivalentDiskSize is the radius of the cone's disk at unit distance
func (em *DirectionalEmitter) EquivalentDiskSize() float64 { return math.Tan(em.halfAngle()) }

// SolidAngle is the solid angle subtended by the cone
func (em *DirectionalEmitter) SolidAngle() float64 {
	return 2 * math.Pi * (1 - em.AngularSizeCosine())
}

// EnvironmentEmitter is an infinitely distant equirectangular map.
// Emission.Image is required and drives importance sampling.
type EnvironmentEmitter struct {
	EmitterCommon
}

func (em *AreaEmitter) Class() EmitterClass        { return ClassArea }
func (em *DirectionalEmitter) Class() EmitterClass { return ClassDirectional }
func (em *EnvironmentEmitter) Class() EmitterClass { return ClassEnvironment }

func (em *AreaEmitter) common() *EmitterCommon        { return &em.EmitterCommon }
func (em *DirectionalEmitter) common() *EmitterCommon { return &em.EmitterCommon }
func (em *EnvironmentEmitter) common() *EmitterCommon { return &em.EmitterCommon }

// CommonOf returns the fields shared by every emitter class
func CommonOf(em Emitter) *EmitterCommon {
	return em.common()
}

// IsDelta reports whether the emitter is a delta in direction
func IsDelta(em Emitter) bool {
	d, ok := em.(*DirectionalEmitter)
	return ok && d.AngularSize <= 0
}

// IsDistant reports whether the emitter lies at infinity
func IsDistant(em Emitter) bool {
	switch em.(type) {
	case *DirectionalEmitter, *EnvironmentEmitter:
		return true
	}
	return false
}

// IsLocal reports whether the emitter is attached to scene geometry
func IsLocal(em Emitter) bool {
	_, ok := em.(*AreaEmitter)
	return ok
}
