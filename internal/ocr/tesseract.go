//go:build ocr

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Enabled reports whether the Tesseract engine was compiled in.
const Enabled = true

// Recognize runs Tesseract over encoded image data (PNG, JPEG, TIFF...).
// A fresh client is created and closed per call; gosseract clients are not
// safe for concurrent use.
func Recognize(imageData []byte, opts Options) (string, error) {
	opts = opts.withDefaults()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.Language); err != nil {
		return "", fmt.Errorf("setting language %q: %w", opts.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		return "", fmt.Errorf("setting page segmentation mode %d: %w", opts.PageSegMode, err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

// Version returns the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}

// Languages lists the traineddata available to Tesseract.
func Languages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}
