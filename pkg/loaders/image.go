// Package loaders decodes image files into kernel textures.
package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/texture"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	"golang.org/x/image/draw"
)

// Luminance weights of linear sRGB primaries
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// ImageLoader decodes images into scalar textures, optionally downsampling
// wide images. Its Load method satisfies scene.ImageLoader.
type ImageLoader struct {
	MaxWidth int // Images wider than this are resampled, zero keeps full size
}

// LoadImage loads a PNG, JPEG, TIFF or BMP image at full size
func LoadImage(filename string, flags texture.Flags) (*texture.Image, error) {
	return ImageLoader{}.Load(filename, flags)
}

// Load decodes the file and converts it to a luminance texture
func (l ImageLoader) Load(filename string, flags texture.Flags) (*texture.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects the format from the file header)
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if l.MaxWidth > 0 && bounds.Dx() > l.MaxWidth {
		height := max(1, bounds.Dy()*l.MaxWidth/bounds.Dx())
		img = resample(img, l.MaxWidth, height)
	}

	tex, err := toTexture(img, flags)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	core.Logger().Debug("image loaded",
		zap.String("file", filename),
		zap.String("format", format),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return tex, nil
}

func resample(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA64(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func toTexture(img image.Image, flags texture.Flags) (*texture.Image, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = (lumR*float64(r) + lumG*float64(g) + lumB*float64(b)) / 65535.0
		}
	}

	return texture.New(width, height, pixels, flags)
}
