// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-itemtext/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForOCR returns hints for OCR failures. enabled reports whether the binary
// was built with Tesseract support; lang is the requested language.
func ForOCR(enabled bool, lang string) string {
	if !enabled {
		return format("rebuild with -tags ocr (requires libtesseract)")
	}
	if lang == "" {
		return ""
	}
	return format("install traineddata for " + strings.ReplaceAll(lang, "+", ", ") +
		" (e.g. tesseract-ocr-" + strings.SplitN(lang, "+", 2)[0] + ") or set TESSDATA_PREFIX")
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for heavy math markup, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-itemtext/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-itemtext") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForMissingColumn lists the header columns a CSV must carry.
func ForMissingColumn(required []string) string {
	if len(required) == 0 {
		return ""
	}
	return format("required columns: " + strings.Join(required, ", "))
}

// ForOutputDirectory returns hints for asset directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable, or use --output-dir")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
