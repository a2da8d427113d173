package extract

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocessImageGrayscaleAveraging(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 90, G: 120, B: 174, A: 255}) // avg 128 -> stays 128
	src.Set(1, 0, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	out := PreprocessImage(src)

	// avg == midpoint is a fixed point of the contrast stretch
	if got := out.GrayAt(0, 0).Y; got != 128 {
		t.Errorf("midpoint pixel = %d, want 128", got)
	}
	if got := out.GrayAt(1, 0).Y; got != 128 {
		t.Errorf("neutral gray pixel = %d, want 128", got)
	}
}

func TestPreprocessImageContrastStretch(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255}) // light -> lighter
	src.Set(1, 0, color.RGBA{R: 50, G: 50, B: 50, A: 255})    // dark -> darker

	out := PreprocessImage(src)

	if got := out.GrayAt(0, 0).Y; got <= 200 {
		t.Errorf("light pixel = %d, want > 200 after stretch", got)
	}
	if got := out.GrayAt(1, 0).Y; got >= 50 {
		t.Errorf("dark pixel = %d, want < 50 after stretch", got)
	}
}

func TestPreprocessImageDeterministic(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(60 * y), B: 99, A: 255})
		}
	}
	a := PreprocessImage(src)
	b := PreprocessImage(src)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if a.GrayAt(x, y) != b.GrayAt(x, y) {
				t.Fatalf("pixel (%d,%d) differs between runs", x, y)
			}
		}
	}
}

func TestPreprocessImageClamps(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(1, 0, color.RGBA{A: 255})

	out := PreprocessImage(src)
	if got := out.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("white pixel = %d, want clamped to 255", got)
	}
	if got := out.GrayAt(1, 0).Y; got != 0 {
		t.Errorf("black pixel = %d, want clamped to 0", got)
	}
}
