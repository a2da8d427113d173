package extract

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

type fakeEngine struct {
	text      string
	err       error
	fractions []float64
	seen      []float64
}

func (f *fakeEngine) Recognize(_ context.Context, _ string, progress ProgressFunc) (string, error) {
	for _, p := range f.fractions {
		if progress != nil {
			progress(p)
			f.seen = append(f.seen, p)
		}
	}
	return f.text, f.err
}

func writeTestPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(60 * x), G: 120, B: 30, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "receipt.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageExtract(t *testing.T) {
	path := writeTestPNG(t)
	engine := &fakeEngine{text: "Invoice INV-1\n\n\n\nTotal   150", fractions: []float64{0.25, 0.5, 1.0}}

	e := NewImageExtractorWithEngine(engine, nil)
	var got []float64
	res, err := e.Extract(context.Background(), path, func(p float64) { got = append(got, p) })
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != "image-ocr" || res.Pages != 1 {
		t.Errorf("result = %+v", res)
	}
	if res.Text != "Invoice INV-1\n\nTotal 150" {
		t.Errorf("text not normalized: %q", res.Text)
	}
	if len(got) != 3 {
		t.Errorf("progress callbacks = %v, want 3", got)
	}
}

func TestImageExtractEngineFailure(t *testing.T) {
	path := writeTestPNG(t)
	engine := &fakeEngine{err: errors.New("ocr backend crashed")}

	e := NewImageExtractorWithEngine(engine, nil)
	if _, err := e.Extract(context.Background(), path, nil); err == nil {
		t.Fatal("want error from engine")
	}
}

func TestImageExtractUndecodableInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewImageExtractorWithEngine(&fakeEngine{}, nil)
	if _, err := e.Extract(context.Background(), path, nil); err == nil {
		t.Fatal("want decode error")
	}
}
