package itemtext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/alnah/go-itemtext/internal/ocr"
)

// recognizeFunc runs OCR on encoded image bytes.
type recognizeFunc func(image []byte, opts ocr.Options) (string, error)

// TextExtractor reads text back from a rendered asset with OCR.
type TextExtractor struct {
	recognize recognizeFunc
	opts      ocr.Options
	timeout   time.Duration
}

// Extract returns the trimmed text recognized in the image at assetPath.
// An undecodable image, an OCR failure and a blank result all fail with
// ErrExtraction.
//
// Tesseract cannot be interrupted: on timeout Extract returns at once while
// the recognition finishes in the background and its result is discarded.
func (e *TextExtractor) Extract(ctx context.Context, assetPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	data, err := os.ReadFile(assetPath) // #nosec G304 -- path produced by AssetManager
	if err != nil {
		return "", stageError(ErrExtraction, ErrAssetRead, err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", stageError(ErrExtraction, ErrImageDecode, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		text, err := e.recognize(data, e.opts)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrExtraction, ctx.Err())
	case res := <-done:
		if errors.Is(res.err, ocr.ErrNotEnabled) {
			return "", fmt.Errorf("%w: %w", ErrExtraction, res.err)
		}
		if res.err != nil {
			return "", stageError(ErrExtraction, ErrOCR, res.err)
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			return "", stageError(ErrExtraction, ErrEmptyText, nil)
		}
		return text, nil
	}
}
