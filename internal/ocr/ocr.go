// Package ocr wraps the Tesseract OCR engine.
//
// The real engine uses gosseract and needs cgo plus an installed Tesseract
// with the requested traineddata. It is compiled only with the "ocr" build
// tag; without it every call returns ErrNotEnabled.
//
//	go build -tags ocr ./...
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-jpn libtesseract-dev
package ocr

import "errors"

// ErrNotEnabled is returned when OCR support was not compiled in.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// DefaultLanguage is the traineddata used when Options.Language is empty.
const DefaultLanguage = "jpn"

// PageSegMode mirrors Tesseract's page segmentation modes.
type PageSegMode int

// Page segmentation modes used by this module.
const (
	PSMAuto        PageSegMode = 3  // Fully automatic
	PSMSingleBlock PageSegMode = 6  // Single uniform block of text
	PSMSingleLine  PageSegMode = 7  // Single text line
	PSMSparseText  PageSegMode = 11 // Find as much text as possible
)

// Options configures a recognition run. The engine mode is not configurable:
// gosseract initializes Tesseract with OEM_DEFAULT (3, LSTM when available,
// legacy otherwise) and exposes no setter.
type Options struct {
	Language    string      // Tesseract language, "+" separated (default "jpn")
	PageSegMode PageSegMode // default PSMSingleBlock
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.PageSegMode == 0 {
		o.PageSegMode = PSMSingleBlock
	}
	return o
}
