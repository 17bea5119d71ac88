package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	itemtext "github.com/alnah/go-itemtext"
	"github.com/alnah/go-itemtext/internal/config"
	"github.com/alnah/go-itemtext/internal/ocr"
)

// Exit codes for the itemtext CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error, or items skipped
	ExitUsage   = 2 // Invalid flags, config, or input data
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome or render errors
	ExitOCR     = 5 // Tesseract errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, itemtext.ErrRender) {
		return ExitBrowser
	}

	// OCR errors (exit 5)
	if errors.Is(err, itemtext.ErrExtraction) ||
		errors.Is(err, ocr.ErrNotEnabled) {
		return ExitOCR
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, itemtext.ErrReadRows) ||
		errors.Is(err, itemtext.ErrAssetWrite) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, itemtext.ErrMissingColumn) ||
		errors.Is(err, itemtext.ErrAggregation) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
