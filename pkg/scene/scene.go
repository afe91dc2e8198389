// Package scene holds the read-only data the kernel shades against: geometry,
// images, materials, emitters and the emitter selection distribution.
package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-spectral-kernel/pkg/distribution"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

// DefaultDeltaAlphaThreshold is the roughness at or below which microfacet
// lobes are treated as perfect mirrors
const DefaultDeltaAlphaThreshold = 1e-4

// Scene is shared by every worker and must not be mutated while tasks that
// read it are outstanding.
type Scene struct {
	Vertices            []geometry.Vertex
	Triangles           []geometry.Triangle
	Images              []*texture.Image
	Materials           []Material
	Emitters            []Emitter
	EmitterDistribution *distribution.Distribution
	Bounds              geometry.BoundingSphere
	DeltaAlphaThreshold float64
}

// Triangle returns the triangle an area emitter is attached to
func (s *Scene) Triangle(em *AreaEmitter) geometry.Triangle {
	return s.Triangles[em.Triangle]
}

// Prepare computes the bounding sphere and the emitter selection distribution.
// Call it again after any edit to geometry or emitters, with no task running.
func (s *Scene) Prepare() error {
	s.Bounds = geometry.NewBoundingSphere(s.Vertices)
	if s.DeltaAlphaThreshold <= 0 {
		s.DeltaAlphaThreshold = DefaultDeltaAlphaThreshold
	}
	return s.RebuildEmitterDistribution()
}

// RebuildEmitterDistribution recomputes each emitter's power weight and the
// distribution used to select among them
func (s *Scene) RebuildEmitterDistribution() error {
	if len(s.Emitters) == 0 {
		s.EmitterDistribution = nil
		return nil
	}

	weights := make([]float64, len(s.Emitters))
	for i, em := range s.Emitters {
		power, err := s.emitterPower(em)
		if err != nil {
			return fmt.Errorf("emitter %d: %w", i, err)
		}
		CommonOf(em).Weight = power
		weights[i] = power
	}

	d, err := distribution.New(weights)
	if err != nil {
		return fmt.Errorf("emitter distribution: %w", err)
	}
	s.EmitterDistribution = d
	return nil
}

func (s *Scene) emitterPower(em Emitter) (float64, error) {
	c := CommonOf(em)
	scale := c.Emission.Spectrum.Average()

	switch e := em.(type) {
	case *AreaEmitter:
		if int(e.Triangle) >= len(s.Triangles) {
			return 0, fmt.Errorf("triangle %d out of range", e.Triangle)
		}
		power := scale * s.Triangles[e.Triangle].Area * math.Pi
		switch e.Direction {
		case EmitTwoSided:
			power *= 2
		case EmitOmni:
			power *= 4
		}
		return power, nil

	case *DirectionalEmitter:
		return scale * s.Bounds.Area(), nil

	case *EnvironmentEmitter:
		if c.Emission.Image == nil {
			return 0, fmt.Errorf("environment emitter has no image")
		}
		return scale * imageMean(c.Emission.Image) * s.Bounds.Area(), nil

	default:
		panic(fmt.Sprintf("scene: unknown emitter class %T", em))
	}
}

func imageMean(img *texture.Image) float64 {
	sum := 0.0
	for _, p := range img.Pixels {
		sum += p
	}
	return sum / float64(len(img.Pixels))
}
