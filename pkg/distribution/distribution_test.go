package distribution

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNew_Invariants(t *testing.T) {
	weights := []float64{0.5, 2.0, 0, 1.5, 6.0}
	d, err := New(weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if d.TotalWeight != 10.0 {
		t.Errorf("Expected total weight 10, got %f", d.TotalWeight)
	}

	prev := 0.0
	for i, e := range d.Entries {
		if e.CDF < prev {
			t.Errorf("CDF decreases at %d: %f < %f", i, e.CDF, prev)
		}
		if math.Abs(e.PDF-weights[i]/d.TotalWeight) > 1e-12 {
			t.Errorf("Entry %d: expected pdf %f, got %f", i, weights[i]/d.TotalWeight, e.PDF)
		}
		prev = e.CDF
	}
	if d.Entries[len(d.Entries)-1].CDF != 1.0 {
		t.Errorf("Expected last CDF exactly 1, got %v", d.Entries[len(d.Entries)-1].CDF)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if _, err := New([]float64{1, -1}); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("Expected ErrInvalidWeight for negative weight, got %v", err)
	}
	if _, err := New([]float64{math.NaN()}); !errors.Is(err, ErrInvalidWeight) {
		t.Errorf("Expected ErrInvalidWeight for NaN weight, got %v", err)
	}
}

func TestNew_AllZeroIsUniform(t *testing.T) {
	d, err := New([]float64{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < d.Len(); i++ {
		if d.PDF(i) != 0.25 {
			t.Errorf("Expected uniform pdf 0.25 at %d, got %f", i, d.PDF(i))
		}
	}
}

func TestSample_ReturnsIntervalIndex(t *testing.T) {
	d, err := New([]float64{1, 3, 0, 2, 4})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := d.Sample(0.0); got != 0 {
		t.Errorf("Expected Sample(0) == 0, got %d", got)
	}

	random := rand.New(rand.NewSource(42))
	for n := 0; n < 10000; n++ {
		rnd := random.Float64()
		i, pdf := d.SampleWithPDF(rnd)

		lower := 0.0
		if i > 0 {
			lower = d.Entries[i-1].CDF
		}
		if !(rnd > lower || (i == 0 && rnd >= 0)) || rnd > d.Entries[i].CDF {
			t.Fatalf("rnd=%f mapped to %d with interval (%f, %f]", rnd, i, lower, d.Entries[i].CDF)
		}
		if pdf != d.Entries[i].PDF {
			t.Fatalf("Expected stored pdf %f, got %f", d.Entries[i].PDF, pdf)
		}
		if i == 2 {
			t.Fatalf("Zero-weight entry was sampled for rnd=%f", rnd)
		}
	}
}

func TestSample_ExactBoundaries(t *testing.T) {
	d, err := New([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		rnd      float64
		expected int
	}{
		{0.0, 0},
		{0.25, 0},
		{0.2500001, 1},
		{0.5, 1},
		{0.74, 2},
		{0.75, 2},
		{0.999, 3},
	}
	for _, tt := range tests {
		if got := d.Sample(tt.rnd); got != tt.expected {
			t.Errorf("Sample(%v): expected %d, got %d", tt.rnd, tt.expected, got)
		}
	}
}

func TestSample_Frequencies(t *testing.T) {
	weights := []float64{0.1, 0.6, 0.3}
	d, err := New(weights)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	counts := make([]int, len(weights))
	random := rand.New(rand.NewSource(7))
	const n = 100000
	for i := 0; i < n; i++ {
		counts[d.Sample(random.Float64())]++
	}
	for i, w := range weights {
		freq := float64(counts[i]) / n
		if math.Abs(freq-w) > 0.01 {
			t.Errorf("Index %d: expected frequency %f, got %f", i, w, freq)
		}
	}
}
