package scene

import (
	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

// Material is a closed set of surface classes: *Diffuse, *Plastic, *Conductor
// and *Dielectric. BSDF dispatch switches on the concrete type.
type Material interface {
	Class() MaterialClass
	boundary() *Boundary
}

type MaterialClass string

const (
	ClassDiffuse    MaterialClass = "diffuse"
	ClassPlastic    MaterialClass = "plastic"
	ClassConductor  MaterialClass = "conductor"
	ClassDielectric MaterialClass = "dielectric"
)

// Boundary describes the interface a material sits on
type Boundary struct {
	ExtIOR     spectrum.RefractiveIndex
	IntIOR     spectrum.RefractiveIndex
	Thinfilm   Thinfilm
	Subsurface Subsurface
	IntMedium  int // -1 for none
	ExtMedium  int // -1 for none
}

// DefaultBoundary is vacuum outside and a 1.5 dielectric inside, without media
func DefaultBoundary() Boundary {
	return Boundary{
		ExtIOR:    spectrum.DielectricIndex(1.0),
		IntIOR:    spectrum.DielectricIndex(1.5),
		IntMedium: -1,
		ExtMedium: -1,
	}
}

// Thinfilm is an optional interference layer on top of the interface.
// Thickness in nanometres is Min + (Max-Min)·image(uv), or Min without an image.
type Thinfilm struct {
	IOR       spectrum.RefractiveIndex
	Thickness *texture.Image
	Min       float64
	Max       float64
}

// Evaluate returns the film for a hit, or nil when the layer is disabled
func (tf Thinfilm) Evaluate(q spectrum.Query, uv core.Vec2) *spectrum.ThinfilmEval {
	if tf.Max <= 0 {
		return nil
	}
	thickness := tf.Min
	if tf.Thickness != nil {
		t := tf.Thickness.Evaluate(uv)
		thickness = tf.Min + (tf.Max-tf.Min)*t
	}
	return &spectrum.ThinfilmEval{IOR: tf.IOR.Sample(q), Thickness: thickness}
}

type SubsurfaceClass string

const (
	SubsurfaceDisabled          SubsurfaceClass = ""
	SubsurfaceRandomWalk        SubsurfaceClass = "random_walk"
	SubsurfaceChristensenBurley SubsurfaceClass = "christensen_burley"
)

// Subsurface describes scattering below the surface. It is carried for
// integrators; the kernel BSDFs only evaluate the boundary.
type Subsurface struct {
	Class              SubsurfaceClass
	ScatteringDistance spectrum.Distribution
	Scale              float64
}

// Enabled reports whether the material scatters below its surface
func (ss Subsurface) Enabled() bool {
	return ss.Class != SubsurfaceDisabled
}

// Diffuse is a Lambertian reflector
type Diffuse struct {
	Boundary
	Reflectance texture.SpectralImage
}

// Plastic is a diffuse base under a dielectric coating
type Plastic struct {
	Boundary
	Diffuse   texture.SpectralImage
	Specular  texture.SpectralImage
	Roughness core.Vec2
}

// Conductor is a rough metal with multiple scattering between microfacets
type Conductor struct {
	Boundary
	Reflectance texture.SpectralImage
	Roughness   core.Vec2
}

// Dielectric is a smooth refracting boundary
type Dielectric struct {
	Boundary
	Specular      texture.SpectralImage
	Transmittance texture.SpectralImage
}

func (m *Diffuse) Class() MaterialClass    { return ClassDiffuse }
func (m *Plastic) Class() MaterialClass    { return ClassPlastic }
func (m *Conductor) Class() MaterialClass  { return ClassConductor }
func (m *Dielectric) Class() MaterialClass { return ClassDielectric }

func (m *Diffuse) boundary() *Boundary    { return &m.Boundary }
func (m *Plastic) boundary() *Boundary    { return &m.Boundary }
func (m *Conductor) boundary() *Boundary  { return &m.Boundary }
func (m *Dielectric) boundary() *Boundary { return &m.Boundary }

// BoundaryOf returns the interface description shared by every material class
func BoundaryOf(m Material) *Boundary {
	return m.boundary()
}
