// Package distribution implements sampling of a discrete probability
// distribution by inverting its cumulative distribution function.
package distribution

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmpty         = errors.New("distribution has no entries")
	ErrInvalidWeight = errors.New("distribution weight must be finite and non-negative")
)

// Entry is one weighted outcome of the distribution
type Entry struct {
	Value float64 // Unnormalized weight
	PDF   float64 // Value / TotalWeight
	CDF   float64 // Sum of PDF up to and including this entry
}

// Distribution is an immutable discrete distribution over indices [0, Len())
type Distribution struct {
	Entries     []Entry
	TotalWeight float64
}

// New builds a distribution from non-negative weights using a prefix sum.
// When every weight is zero the distribution falls back to uniform.
func New(weights []float64) (*Distribution, error) {
	if len(weights) == 0 {
		return nil, ErrEmpty
	}

	total := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: weights[%d] = %g", ErrInvalidWeight, i, w)
		}
		total += w
	}

	entries := make([]Entry, len(weights))
	if total == 0 {
		uniform := 1.0 / float64(len(weights))
		for i := range entries {
			entries[i] = Entry{Value: 0, PDF: uniform, CDF: float64(i+1) * uniform}
		}
	} else {
		cumulative := 0.0
		for i, w := range weights {
			cumulative += w
			entries[i] = Entry{Value: w, PDF: w / total, CDF: cumulative / total}
		}
	}
	// Rounding can leave the last entry just below one
	entries[len(entries)-1].CDF = 1.0

	return &Distribution{Entries: entries, TotalWeight: total}, nil
}

// Len returns the number of entries
func (d *Distribution) Len() int {
	return len(d.Entries)
}

// PDF returns the stored probability of index i, or zero when out of range
func (d *Distribution) PDF(i int) float64 {
	if i < 0 || i >= len(d.Entries) {
		return 0
	}
	return d.Entries[i].PDF
}

// Sample returns the smallest index whose CDF is at least rnd.
// rnd is expected in [0,1); Sample(0) is always 0.
func (d *Distribution) Sample(rnd float64) int {
	b, e := 0, len(d.Entries)
	for e-b > 1 {
		m := b + (e-b)/2
		if d.Entries[m].CDF >= rnd {
			e = m
		} else {
			b = m
		}
	}
	if b < len(d.Entries)-1 && d.Entries[b].CDF < rnd {
		b++
	}
	return b
}

// SampleWithPDF samples an index and returns its stored probability
func (d *Distribution) SampleWithPDF(rnd float64) (int, float64) {
	i := d.Sample(rnd)
	return i, d.Entries[i].PDF
}
