package extract

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	_ "image/jpeg" // register decoders for uploaded formats
)

// contrastFactor is the fixed stretch applied around the midpoint after
// grayscale conversion. Matches the tuning the OCR engine was calibrated
// against.
const contrastFactor = 1.5

// PreprocessImage converts to grayscale by averaging the color channels,
// then applies a fixed-factor contrast stretch around the midpoint.
// Deterministic: same input always yields the same output.
func PreprocessImage(src image.Image) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(bounds)

	factor := (259.0 * (contrastFactor + 255.0)) / (255.0 * (259.0 - contrastFactor))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			avg := float64(r>>8+g>>8+b>>8) / 3.0
			adjusted := factor*(avg-128.0) + 128.0
			out.SetGray(x, y, color.Gray{Y: clampByte(adjusted)})
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(math.Round(v))
}

// writePreprocessedPNG decodes the image at path, preprocesses it, and
// writes the result to a temp PNG. Call cleanup() to remove it.
func writePreprocessedPNG(path string) (outPath string, cleanup func(), err error) {
	in, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer in.Close()

	src, _, err := image.Decode(in)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "ie-pp-*")
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	outPath = filepath.Join(tmpDir, "preprocessed.png")
	f, err := os.Create(outPath)
	if err != nil {
		return "", cleanup, err
	}
	defer f.Close()

	if err := png.Encode(f, PreprocessImage(src)); err != nil {
		return "", cleanup, fmt.Errorf("encode png: %w", err)
	}
	return outPath, cleanup, nil
}
