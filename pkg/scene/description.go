package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

var (
	ErrUnknownMaterialClass     = errors.New("unknown material class")
	ErrUnknownEmitterClass      = errors.New("unknown emitter class")
	ErrUnknownEmissionDirection = errors.New("unknown emission direction")
	ErrUnknownImage             = errors.New("unknown image")
	ErrUnknownSubsurfaceClass   = errors.New("unknown subsurface class")
)

// Description is the YAML form of a scene
type Description struct {
	Vertices  []VertexDesc   `yaml:"vertices"`
	Triangles [][3]uint32    `yaml:"triangles"`
	Images    []ImageDesc    `yaml:"images"`
	Materials []MaterialDesc `yaml:"materials"`
	Emitters  []EmitterDesc  `yaml:"emitters"`
}

type VertexDesc struct {
	Pos    [3]float64 `yaml:"pos"`
	Normal [3]float64 `yaml:"normal"`
	UV     [2]float64 `yaml:"uv"`
}

// ImageDesc is loaded from File when set, otherwise built from Pixels
type ImageDesc struct {
	Name     string     `yaml:"name"`
	File     string     `yaml:"file"`
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	Pixels   []float64  `yaml:"pixels"`
	Equirect bool       `yaml:"equirect"`
	Repeat   bool       `yaml:"repeat"`
	Offset   [2]float64 `yaml:"offset"`
}

// SpectrumDesc is either a constant Value or tabulated Wavelengths/Values
type SpectrumDesc struct {
	Value       *float64  `yaml:"value"`
	Wavelengths []float64 `yaml:"wavelengths"`
	Values      []float64 `yaml:"values"`
	Image       string    `yaml:"image"`
}

type IORDesc struct {
	Eta float64 `yaml:"eta"`
	K   float64 `yaml:"k"`
}

type ThinfilmDesc struct {
	IOR       IORDesc `yaml:"ior"`
	Thickness string  `yaml:"thickness_image"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
}

type SubsurfaceDesc struct {
	Class              string       `yaml:"class"`
	ScatteringDistance SpectrumDesc `yaml:"scattering_distance"`
	Scale              float64      `yaml:"scale"`
}

type MaterialDesc struct {
	Name          string        `yaml:"name"`
	Class         string        `yaml:"class"`
	Reflectance   SpectrumDesc  `yaml:"reflectance"`
	Diffuse       SpectrumDesc  `yaml:"diffuse"`
	Specular      SpectrumDesc  `yaml:"specular"`
	Transmittance SpectrumDesc  `yaml:"transmittance"`
	Roughness     [2]float64    `yaml:"roughness"`
	ExtIOR        *IORDesc      `yaml:"ext_ior"`
	IntIOR        *IORDesc      `yaml:"int_ior"`
	Thinfilm      *ThinfilmDesc   `yaml:"thinfilm"`
	Subsurface    *SubsurfaceDesc `yaml:"subsurface"`
}

type EmitterDesc struct {
	Class       string       `yaml:"class"`
	Emission    SpectrumDesc `yaml:"emission"`
	Triangle    uint32       `yaml:"triangle"`
	Direction   string       `yaml:"emission_direction"`
	Collimation float64      `yaml:"collimation"`
	ToLight     [3]float64   `yaml:"direction"`
	AngularSize float64      `yaml:"angular_size"`
}

// ImageLoader reads an image file into a texture
type ImageLoader func(path string, flags texture.Flags) (*texture.Image, error)

// Build converts a description into a prepared scene. Images with a File are
// read through load, which may be nil when no description references a file.
func (d *Description) Build(load ImageLoader, deltaAlphaThreshold float64) (*Scene, error) {
	s := &Scene{DeltaAlphaThreshold: deltaAlphaThreshold}

	for _, v := range d.Vertices {
		s.Vertices = append(s.Vertices, geometry.Vertex{
			Pos: vec3(v.Pos),
			Nrm: vec3(v.Normal),
			Tex: core.NewVec2(v.UV[0], v.UV[1]),
		})
	}
	for i, idx := range d.Triangles {
		tri, err := geometry.NewTriangle(s.Vertices, idx[0], idx[1], idx[2])
		if err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
		s.Triangles = append(s.Triangles, tri)
	}

	images := make(map[string]*texture.Image, len(d.Images))
	for i, desc := range d.Images {
		img, err := buildImage(desc, load)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, desc.Name, err)
		}
		images[desc.Name] = img
		s.Images = append(s.Images, img)
	}

	for i, desc := range d.Materials {
		m, err := buildMaterial(desc, images)
		if err != nil {
			return nil, fmt.Errorf("material %d (%s): %w", i, desc.Name, err)
		}
		s.Materials = append(s.Materials, m)
	}

	for i, desc := range d.Emitters {
		em, err := buildEmitter(desc, images)
		if err != nil {
			return nil, fmt.Errorf("emitter %d: %w", i, err)
		}
		s.Emitters = append(s.Emitters, em)
	}

	if err := s.Prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildImage(desc ImageDesc, load ImageLoader) (*texture.Image, error) {
	var flags texture.Flags
	if desc.Equirect {
		flags |= texture.Equirectangular | texture.RepeatU
	}
	if desc.Repeat {
		flags |= texture.RepeatU | texture.RepeatV
	}

	var img *texture.Image
	var err error
	if desc.File != "" {
		if load == nil {
			return nil, fmt.Errorf("no loader for %q", desc.File)
		}
		img, err = load(desc.File, flags)
	} else {
		img, err = texture.New(desc.Width, desc.Height, desc.Pixels, flags)
	}
	if err != nil {
		return nil, err
	}
	img.Offset = core.NewVec2(desc.Offset[0], desc.Offset[1])
	return img, nil
}

func buildMaterial(desc MaterialDesc, images map[string]*texture.Image) (Material, error) {
	boundary := DefaultBoundary()
	if desc.ExtIOR != nil {
		boundary.ExtIOR = ior(*desc.ExtIOR)
	}
	if desc.IntIOR != nil {
		boundary.IntIOR = ior(*desc.IntIOR)
	}
	if desc.Thinfilm != nil {
		thickness, err := lookupImage(desc.Thinfilm.Thickness, images)
		if err != nil {
			return nil, err
		}
		boundary.Thinfilm = Thinfilm{
			IOR:       ior(desc.Thinfilm.IOR),
			Thickness: thickness,
			Min:       desc.Thinfilm.Min,
			Max:       desc.Thinfilm.Max,
		}
	}
	if desc.Subsurface != nil {
		ss, err := buildSubsurface(*desc.Subsurface)
		if err != nil {
			return nil, err
		}
		boundary.Subsurface = ss
	}
	roughness := core.NewVec2(desc.Roughness[0], desc.Roughness[1])

	switch MaterialClass(desc.Class) {
	case ClassDiffuse:
		reflectance, err := spectralImage(desc.Reflectance, 0.5, images)
		if err != nil {
			return nil, err
		}
		return &Diffuse{Boundary: boundary, Reflectance: reflectance}, nil

	case ClassPlastic:
		diffuse, err := spectralImage(desc.Diffuse, 0.5, images)
		if err != nil {
			return nil, err
		}
		specular, err := spectralImage(desc.Specular, 1, images)
		if err != nil {
			return nil, err
		}
		return &Plastic{Boundary: boundary, Diffuse: diffuse, Specular: specular, Roughness: roughness}, nil

	case ClassConductor:
		if desc.IntIOR == nil {
			// Gold at 550nm
			boundary.IntIOR = spectrum.ConductorIndex(0.27, 2.78)
		}
		reflectance, err := spectralImage(desc.Reflectance, 1, images)
		if err != nil {
			return nil, err
		}
		return &Conductor{Boundary: boundary, Reflectance: reflectance, Roughness: roughness}, nil

	case ClassDielectric:
		specular, err := spectralImage(desc.Specular, 1, images)
		if err != nil {
			return nil, err
		}
		transmittance, err := spectralImage(desc.Transmittance, 1, images)
		if err != nil {
			return nil, err
		}
		return &Dielectric{Boundary: boundary, Specular: specular, Transmittance: transmittance}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterialClass, desc.Class)
	}
}

func buildSubsurface(desc SubsurfaceDesc) (Subsurface, error) {
	class := SubsurfaceClass(desc.Class)
	switch class {
	case SubsurfaceDisabled, SubsurfaceRandomWalk, SubsurfaceChristensenBurley:
	default:
		return Subsurface{}, fmt.Errorf("%w: %q", ErrUnknownSubsurfaceClass, desc.Class)
	}
	if desc.ScatteringDistance.Image != "" {
		return Subsurface{}, fmt.Errorf("subsurface scattering distance cannot be textured")
	}
	distance, err := spectralImage(desc.ScatteringDistance, 1, nil)
	if err != nil {
		return Subsurface{}, err
	}
	scale := desc.Scale
	if scale <= 0 {
		scale = 1
	}
	return Subsurface{Class: class, ScatteringDistance: distance.Spectrum, Scale: scale}, nil
}

func buildEmitter(desc EmitterDesc, images map[string]*texture.Image) (Emitter, error) {
	emission, err := spectralImage(desc.Emission, 1, images)
	if err != nil {
		return nil, err
	}
	common := EmitterCommon{Emission: emission, MediumIndex: -1}

	switch EmitterClass(desc.Class) {
	case ClassArea:
		direction := EmissionDirection(desc.Direction)
		switch direction {
		case "":
			direction = EmitSingle
		case EmitSingle, EmitTwoSided, EmitOmni:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownEmissionDirection, desc.Direction)
		}
		collimation := desc.Collimation
		if collimation <= 0 {
			collimation = 1
		}
		return &AreaEmitter{EmitterCommon: common, Triangle: desc.Triangle, Direction: direction, Collimation: collimation}, nil

	case ClassDirectional:
		dir := vec3(desc.ToLight)
		if dir.LengthSquared() == 0 {
			return nil, fmt.Errorf("directional emitter needs a direction")
		}
		return NewDirectionalEmitter(common, dir, desc.AngularSize), nil

	case ClassEnvironment:
		if common.Emission.Image == nil {
			return nil, fmt.Errorf("environment emitter needs an emission image")
		}
		return &EnvironmentEmitter{EmitterCommon: common}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEmitterClass, desc.Class)
	}
}

func spectralImage(desc SpectrumDesc, fallback float64, images map[string]*texture.Image) (texture.SpectralImage, error) {
	img, err := lookupImage(desc.Image, images)
	if err != nil {
		return texture.SpectralImage{}, err
	}

	var s spectrum.Distribution
	switch {
	case len(desc.Wavelengths) > 0:
		s, err = spectrum.NewDistribution(desc.Wavelengths, desc.Values)
		if err != nil {
			return texture.SpectralImage{}, err
		}
	case desc.Value != nil:
		s = spectrum.ConstantDistribution(*desc.Value)
	default:
		s = spectrum.ConstantDistribution(fallback)
	}
	return texture.SpectralImage{Spectrum: s, Image: img}, nil
}

func lookupImage(name string, images map[string]*texture.Image) (*texture.Image, error) {
	if name == "" {
		return nil, nil
	}
	img, ok := images[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImage, name)
	}
	return img, nil
}

func ior(d IORDesc) spectrum.RefractiveIndex {
	if d.K > 0 {
		return spectrum.ConductorIndex(d.Eta, d.K)
	}
	return spectrum.DielectricIndex(d.Eta)
}

func vec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
