// Package spectrum implements hero-wavelength spectral values: the wavelength
// query sampled per path, the response carried through every shading event,
// tabulated spectral distributions and the Fresnel provider.
package spectrum

import "math"

const (
	// WavelengthCount is the number of wavelengths traced together per path
	WavelengthCount = 4

	ShortestWavelength = 360.0
	LongestWavelength  = 830.0
	WavelengthRange    = LongestWavelength - ShortestWavelength
)

// Query identifies the wavelengths (in nanometres) sampled for one path.
// The first entry is the hero wavelength; the others are rotated copies of it
// spread evenly across the visible range.
type Query struct {
	Wavelengths [WavelengthCount]float64
}

// SampleQuery picks a hero wavelength uniformly from rnd in [0,1)
func SampleQuery(rnd float64) Query {
	var q Query
	hero := ShortestWavelength + rnd*WavelengthRange
	for i := range q.Wavelengths {
		w := hero + float64(i)*WavelengthRange/WavelengthCount
		if w >= LongestWavelength {
			w -= WavelengthRange
		}
		q.Wavelengths[i] = w
	}
	return q
}

// FixedQuery returns a query where all wavelengths are the same value.
// Used for monochromatic evaluation and tests.
func FixedQuery(wavelength float64) Query {
	var q Query
	for i := range q.Wavelengths {
		q.Wavelengths[i] = wavelength
	}
	return q
}

// PDF returns the density of the hero wavelength, which is uniform
func (q Query) PDF() float64 {
	return 1.0 / WavelengthRange
}

// Valid reports whether every wavelength lies in the supported range
func (q Query) Valid() bool {
	for _, w := range q.Wavelengths {
		if math.IsNaN(w) || w < ShortestWavelength || w > LongestWavelength {
			return false
		}
	}
	return true
}
