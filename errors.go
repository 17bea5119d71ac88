package itemtext

import (
	"errors"
	"fmt"
)

// Sentinel errors for ingestion and aggregation.
var (
	ErrAggregation   = errors.New("aggregation failed")
	ErrReadRows      = errors.New("failed to read rows")
	ErrMissingColumn = errors.New("missing required column")
)

// Sentinel errors for rendering. Every render failure matches ErrRender;
// the detail sentinels narrow down the stage.
var (
	ErrRender          = errors.New("render failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrScreenshot      = errors.New("failed to capture screenshot")
	ErrInvalidMarkup   = errors.New("invalid markup")
	ErrAssetWrite      = errors.New("failed to write asset")
	ErrEmptyIdentifier = errors.New("identifier cannot be empty")
)

// Sentinel errors for text extraction. Every extraction failure matches
// ErrExtraction.
var (
	ErrExtraction  = errors.New("text extraction failed")
	ErrAssetRead   = errors.New("failed to read asset")
	ErrImageDecode = errors.New("asset is not a decodable image")
	ErrOCR         = errors.New("OCR engine failed")
	ErrEmptyText   = errors.New("OCR produced no text")
)

// ErrConversionFinished is returned when a conversion is run twice.
var ErrConversionFinished = errors.New("conversion already finished")

// stageError wraps cause under a stage sentinel and a detail sentinel so that
// errors.Is matches both.
func stageError(stage, detail, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %w", stage, detail)
	}
	return fmt.Errorf("%w: %w: %v", stage, detail, cause)
}
