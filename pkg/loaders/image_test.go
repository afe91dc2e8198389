package loaders

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-spectral-kernel/pkg/texture"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	return img
}

func writeImage(t *testing.T, name string, encode func(f *os.File) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
	return path
}

func TestLoadImageFormats(t *testing.T) {
	img := testImage()
	tests := []struct {
		name   string
		encode func(f *os.File) error
	}{
		{"test.png", func(f *os.File) error { return png.Encode(f, img) }},
		{"test.tiff", func(f *os.File) error { return tiff.Encode(f, img, nil) }},
		{"test.bmp", func(f *os.File) error { return bmp.Encode(f, img) }},
	}

	expected := []float64{1, lumR, lumG, lumB}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImage(t, tt.name, tt.encode)
			tex, err := LoadImage(path, texture.RepeatU)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if tex.Width != 2 || tex.Height != 2 {
				t.Fatalf("Expected 2x2 image, got %dx%d", tex.Width, tex.Height)
			}
			if tex.Flags != texture.RepeatU {
				t.Errorf("Expected flags to be kept, got %v", tex.Flags)
			}
			for i, want := range expected {
				if math.Abs(tex.Pixels[i]-want) > 0.01 {
					t.Errorf("Pixel %d: expected %v, got %v", i, want, tex.Pixels[i])
				}
			}
		})
	}
}

func TestLoadImageResamples(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	path := writeImage(t, "wide.png", func(f *os.File) error { return png.Encode(f, img) })

	tex, err := ImageLoader{MaxWidth: 4}.Load(path, texture.Equirectangular|texture.RepeatU)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 4 || tex.Height != 2 {
		t.Fatalf("Expected 4x2 image, got %dx%d", tex.Width, tex.Height)
	}
	for i, p := range tex.Pixels {
		if math.Abs(p-128.0/255.0) > 0.01 {
			t.Errorf("Pixel %d: expected uniform gray, got %v", i, p)
		}
	}
}

func TestLoadImageErrors(t *testing.T) {
	if _, err := LoadImage("nonexistent.png", 0); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(path, 0); err == nil {
		t.Error("Expected error for invalid image data")
	}
}
