// Package texture holds scalar images shared by materials and emitters and the
// importance sampling used for environment maps.
package texture

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/distribution"
)

// Flags control addressing and sampling of an image
type Flags uint32

const (
	RepeatU Flags = 1 << iota
	RepeatV
	// Equirectangular weights sampling by sin(θ) so that sampled texels are
	// proportional to the solid angle they cover on the sphere
	Equirectangular
)

var ErrInvalidImage = errors.New("invalid image")

// Image is a grid of non-negative scalar texels. Row 0 is at v = 0, which is the
// +Y pole for equirectangular images. Images are immutable once built.
type Image struct {
	Width  int
	Height int
	Pixels []float64
	Offset core.Vec2 // Rotation of an environment image, in uv units
	Flags  Flags

	marginal    *distribution.Distribution
	conditional []*distribution.Distribution
}

// New creates an image and builds its sampling distributions
func New(width, height int, pixels []float64, flags Flags) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidImage, len(pixels), width, height)
	}
	for i, p := range pixels {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("%w: pixel %d = %g", ErrInvalidImage, i, p)
		}
	}

	img := &Image{
		Width:  width,
		Height: height,
		Pixels: append([]float64(nil), pixels...),
		Flags:  flags,
	}
	if err := img.buildSampling(); err != nil {
		return nil, err
	}
	return img, nil
}

// Constant creates a 1x1 image
func Constant(value float64, flags Flags) *Image {
	img, err := New(1, 1, []float64{value}, flags)
	if err != nil {
		panic(err)
	}
	return img
}

func (img *Image) buildSampling() error {
	rowWeights := make([]float64, img.Height)
	img.conditional = make([]*distribution.Distribution, img.Height)

	for y := 0; y < img.Height; y++ {
		scale := 1.0
		if img.Flags&Equirectangular != 0 {
			scale = math.Sin(math.Pi * (float64(y) + 0.5) / float64(img.Height))
		}

		weights := make([]float64, img.Width)
		rowSum := 0.0
		for x := 0; x < img.Width; x++ {
			weights[x] = img.Pixels[y*img.Width+x] * scale
			rowSum += weights[x]
		}

		d, err := distribution.New(weights)
		if err != nil {
			return fmt.Errorf("row %d: %w", y, err)
		}
		img.conditional[y] = d
		rowWeights[y] = rowSum
	}

	d, err := distribution.New(rowWeights)
	if err != nil {
		return fmt.Errorf("marginal: %w", err)
	}
	img.marginal = d
	return nil
}

// Pixel returns the texel containing uv, honouring the repeat flags
func (img *Image) Pixel(uv core.Vec2) (x, y int) {
	return wrap(uv.X, img.Width, img.Flags&RepeatU != 0), wrap(uv.Y, img.Height, img.Flags&RepeatV != 0)
}

// Evaluate returns the texel value at uv
func (img *Image) Evaluate(uv core.Vec2) float64 {
	x, y := img.Pixel(uv)
	return img.Pixels[y*img.Width+x]
}

// PDF returns the density, with respect to uv area, of sampling uv with Sample
func (img *Image) PDF(uv core.Vec2) float64 {
	x, y := img.Pixel(uv)
	return img.marginal.PDF(y) * img.conditional[y].PDF(x) * float64(img.Width*img.Height)
}

// Sample picks a uv position proportionally to the texel weights. It returns the
// position, its uv-area density and the texel it falls into.
func (img *Image) Sample(rnd core.Vec2) (uv core.Vec2, pdf float64, pixel [2]int) {
	y, pdfY := img.marginal.SampleWithPDF(rnd.Y)
	x, pdfX := img.conditional[y].SampleWithPDF(rnd.X)

	// Reuse the random numbers to jitter inside the chosen texel
	jitterY := remap(img.marginal, y, rnd.Y)
	jitterX := remap(img.conditional[y], x, rnd.X)

	uv = core.NewVec2((float64(x)+jitterX)/float64(img.Width), (float64(y)+jitterY)/float64(img.Height))
	pdf = pdfX * pdfY * float64(img.Width*img.Height)
	return uv, pdf, [2]int{x, y}
}

func remap(d *distribution.Distribution, i int, rnd float64) float64 {
	lower := 0.0
	if i > 0 {
		lower = d.Entries[i-1].CDF
	}
	width := d.Entries[i].CDF - lower
	if width <= 0 {
		return 0.5
	}
	return math.Max(0, math.Min(1-1e-9, (rnd-lower)/width))
}

func wrap(t float64, size int, repeat bool) int {
	if repeat {
		t -= math.Floor(t)
	} else {
		t = math.Max(0, math.Min(1, t))
	}
	i := int(t * float64(size))
	if i >= size {
		i = size - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
