package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/geometry"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/texture"
)

func uniformEmission(v float64) texture.SpectralImage {
	return texture.Uniform(spectrum.ConstantDistribution(v))
}

// newTestScene builds a scene around a single triangle facing +Z
func newTestScene(t *testing.T, emitters ...scene.Emitter) *scene.Scene {
	t.Helper()
	vertices := []geometry.Vertex{
		{Pos: core.NewVec3(-1, -1, 0)},
		{Pos: core.NewVec3(1, -1, 0)},
		{Pos: core.NewVec3(0, 1, 0)},
	}
	tri, err := geometry.NewTriangle(vertices, 0, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	s := &scene.Scene{
		Vertices:  vertices,
		Triangles: []geometry.Triangle{tri},
		Emitters:  emitters,
	}
	if err := s.Prepare(); err != nil {
		t.Fatalf("Failed to prepare scene: %v", err)
	}
	return s
}

func newAreaEmitter(dir scene.EmissionDirection, collimation float64) *scene.AreaEmitter {
	return &scene.AreaEmitter{
		EmitterCommon: scene.EmitterCommon{Emission: uniformEmission(2), MediumIndex: -1},
		Direction:     dir,
		Collimation:   collimation,
	}
}

func newSkyImage(t *testing.T) *texture.Image {
	t.Helper()
	const w, h = 8, 4
	pixels := make([]float64, w*h)
	for i := range pixels {
		pixels[i] = 0.5 + float64(i%5)
	}
	img, err := texture.New(w, h, pixels, texture.Equirectangular|texture.RepeatU)
	if err != nil {
		t.Fatal(err)
	}
	img.Offset = core.NewVec2(0.125, 0)
	return img
}

func TestAreaEmitterPDFIntegratesToOne(t *testing.T) {
	tests := []struct {
		name  string
		dir   scene.EmissionDirection
		point core.Vec3
	}{
		{"single above", scene.EmitSingle, core.NewVec3(0, 0, 2)},
		{"single off axis", scene.EmitSingle, core.NewVec3(0.7, 0.2, 0.6)},
		{"two sided below", scene.EmitTwoSided, core.NewVec3(0.3, -0.4, -0.8)},
		{"omni off axis", scene.EmitOmni, core.NewVec3(0.7, 0.2, 0.6)},
		{"omni below", scene.EmitOmni, core.NewVec3(-0.2, 0.1, -0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := newAreaEmitter(tt.dir, 1)
			s := newTestScene(t, em)
			q := spectrum.FixedQuery(550)
			random := rand.New(rand.NewSource(42))
			const numSamples = 400000

			// Uniform directions over the sphere, weighted by 4π
			sum := 0.0
			for i := 0; i < numSamples; i++ {
				dir := core.SampleUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
				dist, _, hit := geometry.Intersect(tt.point, dir, s.Vertices, s.Triangles[0], 1e-6, math.Inf(1))
				if !hit {
					continue
				}
				rq := RadianceQuery{Source: tt.point, Target: tt.point.Add(dir.Multiply(dist))}
				sum += GetRadiance(em, q, rq, s).PDFDir * 4 * math.Pi
			}

			integral := sum / numSamples
			if math.Abs(integral-1) > 0.03 {
				t.Errorf("Expected solid angle pdf to integrate to 1, got %v", integral)
			}
		})
	}
}

func TestAreaEmitterOutgoingPDFIntegratesToOne(t *testing.T) {
	tests := []struct {
		name        string
		direction   scene.EmissionDirection
		collimation float64
	}{
		{"single", scene.EmitSingle, 1},
		{"single collimated", scene.EmitSingle, 4},
		{"two sided", scene.EmitTwoSided, 1},
		{"omni", scene.EmitOmni, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := newAreaEmitter(tt.direction, tt.collimation)
			s := newTestScene(t, em)
			q := spectrum.FixedQuery(550)
			normal := core.NewVec3(0, 0, 1)
			random := rand.New(rand.NewSource(7))
			const numSamples = 100000

			sum := 0.0
			for i := 0; i < numSamples; i++ {
				dir := core.SampleUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
				r := EvaluateOutLocal(em, q, core.Vec2{}, normal, dir, s)
				if r.PDFDir == 0 {
					continue
				}
				if math.Abs(r.PDFDirOut-r.PDFDir*r.PDFArea) > 1e-12 {
					t.Fatalf("Expected PDFDirOut = PDFDir * PDFArea, got %v", r.PDFDirOut)
				}
				sum += r.PDFDir * 4 * math.Pi
			}

			integral := sum / numSamples
			if math.Abs(integral-1) > 0.02 {
				t.Errorf("Expected emission pdf to integrate to 1, got %v", integral)
			}
		})
	}
}

func TestAreaEmitterBackside(t *testing.T) {
	em := newAreaEmitter(scene.EmitSingle, 1)
	s := newTestScene(t, em)
	q := spectrum.FixedQuery(550)

	r := GetRadiance(em, q, RadianceQuery{Source: core.NewVec3(0, 0, -1), Target: core.Vec3{}}, s)
	if !r.Value.IsZero() || r.PDFDir != 0 {
		t.Errorf("Expected no radiance behind a single sided emitter, got %v with pdf %v", r.Value, r.PDFDir)
	}

	em.Direction = scene.EmitTwoSided
	r = GetRadiance(em, q, RadianceQuery{Source: core.NewVec3(0, 0, -1), Target: core.Vec3{}}, s)
	if r.Value.IsZero() || r.PDFDir <= 0 {
		t.Errorf("Expected radiance behind a two sided emitter, got %v with pdf %v", r.Value, r.PDFDir)
	}
}

func TestAreaSampleIn(t *testing.T) {
	em := newAreaEmitter(scene.EmitSingle, 1)
	s := newTestScene(t, em)
	q := spectrum.FixedQuery(550)
	from := core.NewVec3(0.1, -0.2, 1.5)
	smp := core.NewSeededSampler(3)

	for i := 0; i < 1000; i++ {
		sample := SampleEmitter(q, 0, smp, from, s)
		if !sample.Valid() {
			t.Fatalf("Expected a valid sample, got %+v", sample)
		}
		if math.Abs(sample.Origin.Z) > 1e-12 {
			t.Fatalf("Expected origin on the emitter plane, got %v", sample.Origin)
		}
		expected := sample.PDFArea * core.AreaToSolidAngle(from.Subtract(sample.Origin), s.Triangles[0].GeoN, 1)
		if math.Abs(sample.PDFDir-expected) > 1e-9*expected {
			t.Fatalf("Expected PDFDir %v, got %v", expected, sample.PDFDir)
		}
		if sample.PDFSample != 1 || sample.CombinedPDF() != sample.PDFDir {
			t.Fatalf("Expected selection pdf 1, got %v", sample.PDFSample)
		}
		if sample.TriangleIndex != 0 || sample.IsDistant || sample.IsDelta {
			t.Fatalf("Unexpected bookkeeping: %+v", sample)
		}
	}
}

func TestDirectionalPDFInDistDelta(t *testing.T) {
	sun := scene.NewDirectionalEmitter(scene.EmitterCommon{Emission: uniformEmission(1)}, core.NewVec3(1, 2, 3), 0)
	s := newTestScene(t, sun)

	if pdf := PDFInDist(sun, sun.Direction, s); pdf != 1.0 {
		t.Errorf("Expected pdf exactly 1 along the light direction, got %v", pdf)
	}

	perturbed := sun.Direction.Add(core.NewVec3(1e-7, 0, 0)).Normalize()
	if pdf := PDFInDist(sun, perturbed, s); pdf != 0.0 {
		t.Errorf("Expected pdf 0 for a perturbed direction, got %v", pdf)
	}

	if !scene.IsDelta(sun) {
		t.Error("Expected zero angular size to be a delta emitter")
	}
}

func TestDirectionalDirectlyVisibleScale(t *testing.T) {
	sun := scene.NewDirectionalEmitter(scene.EmitterCommon{Emission: uniformEmission(3)}, core.NewVec3(0, 1, 0), 0.02)
	s := newTestScene(t, sun)
	q := spectrum.FixedQuery(500)

	indirect := GetRadiance(sun, q, RadianceQuery{Direction: sun.Direction}, s)
	direct := GetRadiance(sun, q, RadianceQuery{Direction: sun.Direction, DirectlyVisible: true}, s)

	expectedScale := 1 / (2 * math.Pi * (1 - math.Cos(0.01)))
	got := direct.Value.Values[0] / indirect.Value.Values[0]
	if math.Abs(got-expectedScale) > 1e-9*expectedScale {
		t.Errorf("Expected direct scale %v, got %v", expectedScale, got)
	}
	if indirect.PDFDir != 1 || math.Abs(indirect.PDFArea-1/s.Bounds.Area()) > 1e-12 {
		t.Errorf("Expected pdf dir 1 and area 1/(πR²), got %v and %v", indirect.PDFDir, indirect.PDFArea)
	}

	outside := GetRadiance(sun, q, RadianceQuery{Direction: core.NewVec3(1, 0, 0)}, s)
	if !outside.Value.IsZero() {
		t.Errorf("Expected no radiance outside the sun disk, got %v", outside.Value)
	}
}

func TestDirectionalSampleIn(t *testing.T) {
	sun := scene.NewDirectionalEmitter(scene.EmitterCommon{Emission: uniformEmission(1)}, core.NewVec3(0, 1, 1), 0.1)
	s := newTestScene(t, sun)
	q := spectrum.FixedQuery(600)
	from := core.NewVec3(0.2, 0, 0)
	smp := core.NewSeededSampler(11)

	for i := 0; i < 1000; i++ {
		sample := SampleIn(sun, q, from, s, smp)
		if sample.Direction.Dot(sun.Direction) < sun.AngularSizeCosine()-1e-9 {
			t.Fatalf("Expected direction inside the sun cone, got %v", sample.Direction)
		}
		if PDFInDist(sun, sample.Direction, s) != 1 {
			t.Fatalf("Expected sampled direction to have pdf 1")
		}
		r := sample.Origin.Subtract(s.Bounds.Center).Length()
		if math.Abs(r-s.Bounds.Radius) > 1e-9 {
			t.Fatalf("Expected origin on the bounding sphere, got radius %v", r)
		}
	}
}

func TestEnvironmentSampleInMatchesPDF(t *testing.T) {
	env := &scene.EnvironmentEmitter{EmitterCommon: scene.EmitterCommon{
		Emission: texture.SpectralImage{Spectrum: spectrum.ConstantDistribution(1), Image: newSkyImage(t)},
	}}
	s := newTestScene(t, env)
	q := spectrum.FixedQuery(450)
	smp := core.NewSeededSampler(5)

	for i := 0; i < 2000; i++ {
		sample := SampleIn(env, q, core.Vec3{}, s, smp)
		if !sample.Valid() {
			continue
		}
		expected := PDFInDist(env, sample.Direction, s)
		if math.Abs(sample.PDFDir-expected) > 1e-6*expected {
			t.Fatalf("Expected PDFDir %v, got %v", expected, sample.PDFDir)
		}
		r := EvaluateOutDist(env, q, sample.Direction, s)
		if math.Abs(r.Value.Values[0]-sample.Value.Values[0]) > 1e-9 {
			t.Fatalf("Expected radiance %v, got %v", r.Value, sample.Value)
		}
	}
}

func TestEnvironmentPDFIntegratesToOne(t *testing.T) {
	env := &scene.EnvironmentEmitter{EmitterCommon: scene.EmitterCommon{
		Emission: texture.SpectralImage{Spectrum: spectrum.ConstantDistribution(1), Image: newSkyImage(t)},
	}}
	s := newTestScene(t, env)
	random := rand.New(rand.NewSource(13))
	const numSamples = 200000

	sum := 0.0
	for i := 0; i < numSamples; i++ {
		dir := core.SampleUniformSphere(core.NewVec2(random.Float64(), random.Float64()))
		sum += PDFInDist(env, dir, s) * 4 * math.Pi
	}

	integral := sum / numSamples
	if math.Abs(integral-1) > 0.03 {
		t.Errorf("Expected environment pdf to integrate to 1, got %v", integral)
	}
}

func TestSampleEmission(t *testing.T) {
	area := newAreaEmitter(scene.EmitSingle, 1)
	sun := scene.NewDirectionalEmitter(scene.EmitterCommon{Emission: uniformEmission(1)}, core.NewVec3(0, 0, 1), 0.05)
	env := &scene.EnvironmentEmitter{EmitterCommon: scene.EmitterCommon{
		Emission: texture.SpectralImage{Spectrum: spectrum.ConstantDistribution(1), Image: newSkyImage(t)},
	}}
	s := newTestScene(t, area, sun, env)
	q := spectrum.FixedQuery(550)
	smp := core.NewSeededSampler(17)

	counts := make([]int, len(s.Emitters))
	const numSamples = 20000
	for i := 0; i < numSamples; i++ {
		sample := SampleEmission(s, q, smp)
		counts[sample.EmitterIndex]++

		if math.Abs(sample.PDFSample-DiscretePDF(s, sample.EmitterIndex)) > 1e-12 {
			t.Fatalf("Expected selection pdf %v, got %v", DiscretePDF(s, sample.EmitterIndex), sample.PDFSample)
		}

		switch sample.EmitterIndex {
		case 0:
			if sample.Direction.Dot(sample.Normal) <= 0 || sample.TriangleIndex != 0 {
				t.Fatalf("Expected emission into the front hemisphere, got %+v", sample)
			}
		case 1:
			if sample.Direction.Dot(sun.Direction) > -sun.AngularSizeCosine()+1e-9 {
				t.Fatalf("Expected emission away from the sun, got %v", sample.Direction)
			}
			if !sample.IsDistant || sample.TriangleIndex != -1 {
				t.Fatalf("Unexpected bookkeeping: %+v", sample)
			}
		case 2:
			if !sample.Valid() {
				continue
			}
			expected := PDFInDist(env, sample.Direction.Negate(), s)
			if math.Abs(sample.PDFDir-expected) > 1e-6*expected {
				t.Fatalf("Expected PDFDir %v, got %v", expected, sample.PDFDir)
			}
		}
		if sample.Valid() && math.Abs(sample.PDFDirOut-sample.PDFDir*sample.PDFArea) > 1e-9*sample.PDFDirOut {
			t.Fatalf("Expected PDFDirOut = PDFDir * PDFArea for emitter %d", sample.EmitterIndex)
		}
	}

	for i, c := range counts {
		got := float64(c) / numSamples
		if math.Abs(got-DiscretePDF(s, i)) > 0.015 {
			t.Errorf("Emitter %d: expected frequency %v, got %v", i, DiscretePDF(s, i), got)
		}
	}
}

func TestSceneWithoutEmitters(t *testing.T) {
	s := newTestScene(t)
	q := spectrum.FixedQuery(550)
	smp := core.NewSeededSampler(1)

	if pdf := DiscretePDF(s, 0); pdf != 0 {
		t.Errorf("Expected zero selection pdf, got %v", pdf)
	}
	if index := SampleEmitterIndex(s, smp); index != -1 {
		t.Errorf("Expected index -1, got %d", index)
	}
	if sample := SampleEmission(s, q, smp); sample.Valid() || sample.EmitterIndex != -1 {
		t.Errorf("Expected an invalid emission sample, got %+v", sample)
	}
	if sample := SampleEmitter(q, -1, smp, core.NewVec3(0, 0, 1), s); sample.Valid() {
		t.Errorf("Expected an invalid emitter sample, got %+v", sample)
	}
}

func TestUnknownEmitterPanics(t *testing.T) {
	s := newTestScene(t, newAreaEmitter(scene.EmitSingle, 1))
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an unknown emitter")
		}
	}()
	SampleIn(nil, spectrum.FixedQuery(550), core.Vec3{}, s, core.NewSeededSampler(1))
}
