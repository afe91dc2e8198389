package estimator

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/tasks"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

func constant(v float64) texture.SpectralImage {
	return texture.Uniform(spectrum.ConstantDistribution(v))
}

func newTestScene(t *testing.T, emitters ...scene.Emitter) *scene.Scene {
	t.Helper()
	vertices := []geometry.Vertex{
		{Pos: core.NewVec3(0, 0, 0)},
		{Pos: core.NewVec3(1, 0, 0)},
		{Pos: core.NewVec3(0, 1, 0)},
	}
	tri, err := geometry.NewTriangle(vertices, 0, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	s := &scene.Scene{Vertices: vertices, Triangles: []geometry.Triangle{tri}, Emitters: emitters}
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAccumulator(t *testing.T) {
	var a, b Accumulator
	for _, v := range []float64{1, 2, 3} {
		a.AddScalar(v)
	}
	b.AddScalar(4)
	a.Merge(b)

	if a.Count != 4 {
		t.Errorf("Expected 4 samples, got %d", a.Count)
	}
	if math.Abs(a.MonochromaticMean()-2.5) > 1e-12 {
		t.Errorf("Expected mean 2.5, got %v", a.MonochromaticMean())
	}
	// Sample variance of 1..4
	if math.Abs(a.Variance()-5.0/3.0) > 1e-12 {
		t.Errorf("Expected variance 5/3, got %v", a.Variance())
	}
	if math.Abs(a.Mean().Values[2]-2.5) > 1e-12 {
		t.Errorf("Expected spectral mean 2.5, got %v", a.Mean())
	}

	var empty Accumulator
	if empty.StdError() != 0 || !empty.Mean().IsZero() {
		t.Error("Expected empty accumulator to report zero")
	}
}

func TestWhiteFurnace(t *testing.T) {
	sched := tasks.New(tasks.Config{Workers: 4})
	defer sched.Close()
	s := newTestScene(t)
	s.DeltaAlphaThreshold = scene.DefaultDeltaAlphaThreshold

	conductorBoundary := scene.DefaultBoundary()
	conductorBoundary.IntIOR = spectrum.ConductorIndex(0.2, 3.0)

	tests := []struct {
		name     string
		mtl      scene.Material
		expected float64 // Zero when only the energy bound is checked
	}{
		{"white diffuse", &scene.Diffuse{Boundary: scene.DefaultBoundary(), Reflectance: constant(1)}, 1},
		{"plastic", &scene.Plastic{Boundary: scene.DefaultBoundary(), Diffuse: constant(1), Specular: constant(1), Roughness: core.NewVec2(0.3, 0.3)}, 0},
		{"rough conductor", &scene.Conductor{Boundary: conductorBoundary, Reflectance: constant(1), Roughness: core.NewVec2(0.5, 0.5)}, 0},
		{"dielectric", &scene.Dielectric{Boundary: scene.DefaultBoundary(), Specular: constant(1), Transmittance: constant(1)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := WhiteFurnace(sched, s, tt.mtl, 30, Config{Samples: 20000, Seed: 1})
			if err != nil {
				t.Fatal(err)
			}
			if res.Samples != 20000 {
				t.Errorf("Expected 20000 samples, got %d", res.Samples)
			}
			if !res.Info && !res.Passed(4, 0.01) {
				t.Errorf("Energy bound violated: %v", res)
			}
			if tt.expected > 0 && math.Abs(res.Value-tt.expected) > 4*res.StdError+0.01 {
				t.Errorf("Expected albedo %v, got %v", tt.expected, res)
			}
		})
	}
}

func TestRoughPlasticIsInformational(t *testing.T) {
	sched := tasks.New(tasks.Config{Workers: 2})
	defer sched.Close()
	s := newTestScene(t)
	s.DeltaAlphaThreshold = scene.DefaultDeltaAlphaThreshold

	rough := &scene.Plastic{Boundary: scene.DefaultBoundary(), Diffuse: constant(1), Specular: constant(1), Roughness: core.NewVec2(0.3, 0.3)}
	smooth := &scene.Plastic{Boundary: scene.DefaultBoundary(), Diffuse: constant(1), Specular: constant(1)}

	res, err := WhiteFurnace(sched, s, rough, 75, Config{Samples: 100, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Info || !res.Passed(0, 0) {
		t.Errorf("Expected rough plastic to be informational, got %+v", res)
	}

	res, err = WhiteFurnace(sched, s, smooth, 75, Config{Samples: 1000, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Info {
		t.Error("Expected smooth plastic to be checked")
	}
	if math.Abs(res.Value-1) > 1e-9 {
		t.Errorf("Expected smooth white plastic albedo 1, got %v", res.Value)
	}
}

func TestWhiteFurnaceLinearMatchesParallel(t *testing.T) {
	sched := tasks.New(tasks.Config{Workers: 3})
	defer sched.Close()
	s := newTestScene(t)
	s.DeltaAlphaThreshold = scene.DefaultDeltaAlphaThreshold
	mtl := &scene.Diffuse{Boundary: scene.DefaultBoundary(), Reflectance: constant(0.5)}

	linear, err := WhiteFurnace(sched, s, mtl, 0, Config{Samples: 1000, Linear: true})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := WhiteFurnace(sched, s, mtl, 0, Config{Samples: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(linear.Value-parallel.Value) > 1e-9 {
		t.Errorf("Expected equal constant albedo, got %v and %v", linear.Value, parallel.Value)
	}
}

func TestEmitterPDFNormalization(t *testing.T) {
	sched := tasks.New(tasks.Config{Workers: 4})
	defer sched.Close()

	area := &scene.AreaEmitter{EmitterCommon: scene.EmitterCommon{Emission: constant(1)}, Direction: scene.EmitSingle, Collimation: 1}
	sun := scene.NewDirectionalEmitter(scene.EmitterCommon{Emission: constant(1)}, core.NewVec3(0, 0, 1), 0.01)
	s := newTestScene(t, area, sun)

	res, err := EmitterPDFNormalization(sched, s, 0, ProbePoint(s, area), Config{Samples: 200000, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed(4, 0.02) {
		t.Errorf("Expected area pdf to integrate to 1, got %v", res)
	}

	if _, err := EmitterPDFNormalization(sched, s, 1, ProbePoint(s, sun), Config{Samples: 10}); !errors.Is(err, ErrNotNormalizable) {
		t.Errorf("Expected ErrNotNormalizable, got %v", err)
	}
}

func TestProbePointFacesEmitter(t *testing.T) {
	area := &scene.AreaEmitter{EmitterCommon: scene.EmitterCommon{Emission: constant(1)}, Direction: scene.EmitSingle, Collimation: 1}
	s := newTestScene(t, area)

	p := ProbePoint(s, area)
	if p.Z <= 0 {
		t.Errorf("Expected probe point in front of the emitter, got %v", p)
	}
}
