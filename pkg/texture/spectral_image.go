package texture

import (
	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
)

// SpectralImage is a spectrum optionally modulated by an image
type SpectralImage struct {
	Spectrum spectrum.Distribution
	Image    *Image
}

// Uniform returns a spectral image without a texture
func Uniform(s spectrum.Distribution) SpectralImage {
	return SpectralImage{Spectrum: s}
}

// Evaluate returns the spectral value at uv for the query
func (si SpectralImage) Evaluate(q spectrum.Query, uv core.Vec2) spectrum.Response {
	value := si.Spectrum.Sample(q)
	if si.Image != nil {
		value = value.Scale(si.Image.Evaluate(uv))
	}
	return value
}
