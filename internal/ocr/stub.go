//go:build !ocr

package ocr

// Enabled reports whether the Tesseract engine was compiled in.
const Enabled = false

// Recognize always fails with ErrNotEnabled in builds without the "ocr" tag.
func Recognize(imageData []byte, opts Options) (string, error) {
	return "", ErrNotEnabled
}

// Version returns an empty string when OCR is not compiled in.
func Version() string {
	return ""
}

// Languages always fails with ErrNotEnabled in builds without the "ocr" tag.
func Languages() ([]string, error) {
	return nil, ErrNotEnabled
}
