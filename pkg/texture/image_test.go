package texture

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

func TestNewRejectsInvalidImages(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		pixels []float64
	}{
		{"zero width", 0, 1, nil},
		{"pixel count", 2, 2, []float64{1, 2, 3}},
		{"negative", 1, 1, []float64{-1}},
		{"nan", 1, 1, []float64{math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, tt.pixels, 0)
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("Expected ErrInvalidImage, got %v", err)
			}
		})
	}
}

func TestEvaluateWraps(t *testing.T) {
	img, err := New(2, 1, []float64{1, 3}, RepeatU)
	if err != nil {
		t.Fatal(err)
	}
	if v := img.Evaluate(core.NewVec2(0.25, 0.5)); v != 1 {
		t.Errorf("Expected 1, got %v", v)
	}
	if v := img.Evaluate(core.NewVec2(1.75, 0.5)); v != 3 {
		t.Errorf("Expected wrapped 3, got %v", v)
	}
	if v := img.Evaluate(core.NewVec2(1.0, 0.5)); v != 1 {
		t.Errorf("Expected u=1 to wrap to first texel, got %v", v)
	}
}

func TestSamplePDFMatchesPDF(t *testing.T) {
	pixels := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	img, err := New(4, 3, pixels, Equirectangular)
	if err != nil {
		t.Fatal(err)
	}
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		uv, pdf, pixel := img.Sample(core.NewVec2(random.Float64(), random.Float64()))
		if pixel[0] == 0 && pixel[1] == 0 {
			t.Fatalf("Sampled zero-weight texel at %v", uv)
		}
		x, y := img.Pixel(uv)
		if x != pixel[0] || y != pixel[1] {
			t.Fatalf("Expected uv %v inside pixel %v, got (%d,%d)", uv, pixel, x, y)
		}
		if p := img.PDF(uv); math.Abs(p-pdf) > 1e-9 {
			t.Fatalf("Expected PDF(uv) %v to match sample pdf %v", p, pdf)
		}
	}
}

func TestPDFIntegratesToOne(t *testing.T) {
	img, err := New(3, 2, []float64{1, 2, 3, 4, 5, 6}, Equirectangular)
	if err != nil {
		t.Fatal(err)
	}
	const n = 200
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += img.PDF(core.NewVec2((float64(i)+0.5)/n, (float64(j)+0.5)/n))
		}
	}
	if integral := sum / (n * n); math.Abs(integral-1) > 1e-6 {
		t.Errorf("Expected pdf to integrate to 1, got %v", integral)
	}
}

func TestSpectralImageEvaluate(t *testing.T) {
	q := spectrum.FixedQuery(550)
	si := Uniform(spectrum.ConstantDistribution(2))
	if v := si.Evaluate(q, core.NewVec2(0.5, 0.5)); v.Values[0] != 2 {
		t.Errorf("Expected 2, got %v", v)
	}
	si.Image = Constant(0.25, 0)
	if v := si.Evaluate(q, core.NewVec2(0.5, 0.5)); v.Values[0] != 0.5 {
		t.Errorf("Expected 0.5, got %v", v)
	}
}
