// Package estimator runs Monte Carlo self-checks of the kernel on the task
// scheduler and accumulates their statistics.
package estimator

import (
	"math"

	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

// Accumulator tracks the running mean and variance of spectral samples. The
// variance is tracked on the monochromatic value.
type Accumulator struct {
	Sum     spectrum.Response
	MonoSum float64
	MonoSq  float64
	Count   int
}

// Add adds a sample
func (a *Accumulator) Add(r spectrum.Response) {
	a.Sum = a.Sum.Add(r)
	m := r.Monochromatic()
	a.MonoSum += m
	a.MonoSq += m * m
	a.Count++
}

// AddScalar adds a sample with the same value at every wavelength
func (a *Accumulator) AddScalar(v float64) {
	a.Add(spectrum.Constant(v))
}

// Merge folds another accumulator into this one
func (a *Accumulator) Merge(o Accumulator) {
	a.Sum = a.Sum.Add(o.Sum)
	a.MonoSum += o.MonoSum
	a.MonoSq += o.MonoSq
	a.Count += o.Count
}

// Mean returns the current average
func (a *Accumulator) Mean() spectrum.Response {
	if a.Count == 0 {
		return spectrum.Zero()
	}
	return a.Sum.Scale(1.0 / float64(a.Count))
}

// MonochromaticMean is the mean over samples and wavelengths
func (a *Accumulator) MonochromaticMean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.MonoSum / float64(a.Count)
}

// Variance is the sample variance of the monochromatic value
func (a *Accumulator) Variance() float64 {
	if a.Count < 2 {
		return 0
	}
	n := float64(a.Count)
	mean := a.MonoSum / n
	return math.Max(0, (a.MonoSq-n*mean*mean)/(n-1))
}

// StdError is the standard error of the monochromatic mean
func (a *Accumulator) StdError() float64 {
	if a.Count == 0 {
		return 0
	}
	return math.Sqrt(a.Variance() / float64(a.Count))
}
