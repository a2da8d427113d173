package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// OCREngine recognizes text in a preprocessed image. Implementations may
// report fractional progress through the callback; the exec-backed
// engine only reports start and completion.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string, progress ProgressFunc) (string, error)
}

// ImageConfig configures the image text extractor.
type ImageConfig struct {
	Tesseract string // binary name or absolute path; "" -> "tesseract"
	Language  string // OCR language code; "" -> "eng"
}

// ImageExtractor preprocesses an image (grayscale + contrast stretch)
// and runs it through an OCR engine.
type ImageExtractor struct {
	cfg    ImageConfig
	engine OCREngine
	logger *slog.Logger
}

func NewImageExtractor(cfg ImageConfig, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &ImageExtractor{
		cfg:    cfg,
		engine: &tesseractEngine{bin: cfg.Tesseract, lang: cfg.Language, runner: execRunner{}},
		logger: logger,
	}
}

// NewImageExtractorWithEngine injects a custom OCR engine (tests).
func NewImageExtractorWithEngine(engine OCREngine, logger *slog.Logger) *ImageExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageExtractor{engine: engine, logger: logger}
}

func (e *ImageExtractor) Extract(ctx context.Context, path string, progress ProgressFunc) (TextExtractionResult, error) {
	start := time.Now()

	ppPath, cleanup, err := writePreprocessedPNG(path)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		e.logger.Error("extract.image.preprocess_failed", "path", path, "error", err)
		return TextExtractionResult{}, fmt.Errorf("preprocess image: %w", err)
	}

	txt, err := e.engine.Recognize(ctx, ppPath, progress)
	if err != nil {
		return TextExtractionResult{}, fmt.Errorf("ocr: %w", err)
	}

	res := TextExtractionResult{
		Text:     NormalizeText(txt),
		Pages:    1,
		Method:   "image-ocr",
		Duration: time.Since(start),
	}
	e.logger.Debug("extract.image.ok", "path", path, "bytes", len(res.Text))
	return res, nil
}

// tesseractEngine shells out to tesseract. It cannot observe the
// engine's internal progress, so it reports 0.0 before recognition and
// 1.0 after; fake engines in tests exercise the fractional path.
type tesseractEngine struct {
	bin    string
	lang   string
	runner Runner
}

func (t *tesseractEngine) Recognize(ctx context.Context, imagePath string, progress ProgressFunc) (string, error) {
	if progress != nil {
		progress(0.0)
	}
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.bin, imagePath, "stdout", "-l", t.lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %s: %w", truncate(string(errb), 512), err)
	}
	if progress != nil {
		progress(1.0)
	}
	return string(out), nil
}
