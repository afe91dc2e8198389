package spectrum

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSpectrum is returned when tabulated spectral samples cannot form a distribution
var ErrInvalidSpectrum = errors.New("invalid spectral distribution")

// Distribution is a piecewise-linear function of wavelength. Outside the
// tabulated range the nearest end value is used.
type Distribution struct {
	wavelengths []float64
	values      []float64
}

// ConstantDistribution returns a flat spectrum
func ConstantDistribution(v float64) Distribution {
	return Distribution{wavelengths: []float64{ShortestWavelength}, values: []float64{v}}
}

// NewDistribution builds a distribution from wavelength/value pairs.
// Wavelengths must be strictly increasing.
func NewDistribution(wavelengths, values []float64) (Distribution, error) {
	if len(wavelengths) == 0 || len(wavelengths) != len(values) {
		return Distribution{}, fmt.Errorf("%w: %d wavelengths, %d values", ErrInvalidSpectrum, len(wavelengths), len(values))
	}
	for i := 1; i < len(wavelengths); i++ {
		if wavelengths[i] <= wavelengths[i-1] {
			return Distribution{}, fmt.Errorf("%w: wavelengths not increasing at %d", ErrInvalidSpectrum, i)
		}
	}
	return Distribution{
		wavelengths: append([]float64(nil), wavelengths...),
		values:      append([]float64(nil), values...),
	}, nil
}

// IsZero reports whether the distribution is empty or zero everywhere
func (d Distribution) IsZero() bool {
	for _, v := range d.values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Value returns the spectrum at a single wavelength
func (d Distribution) Value(wavelength float64) float64 {
	n := len(d.wavelengths)
	switch {
	case n == 0:
		return 0
	case n == 1 || wavelength <= d.wavelengths[0]:
		return d.values[0]
	case wavelength >= d.wavelengths[n-1]:
		return d.values[n-1]
	}

	i := sort.SearchFloat64s(d.wavelengths, wavelength)
	w0, w1 := d.wavelengths[i-1], d.wavelengths[i]
	t := (wavelength - w0) / (w1 - w0)
	return d.values[i-1]*(1-t) + d.values[i]*t
}

// Sample evaluates the distribution at the wavelengths of the query
func (d Distribution) Sample(q Query) Response {
	var r Response
	for i, w := range q.Wavelengths {
		r.Values[i] = d.Value(w)
	}
	return r
}

// Average returns the mean value over the visible range, used as a power estimate
func (d Distribution) Average() float64 {
	const steps = 94
	sum := 0.0
	for i := 0; i < steps; i++ {
		w := ShortestWavelength + (float64(i)+0.5)*WavelengthRange/steps
		sum += d.Value(w)
	}
	return sum / steps
}
