package itemtext

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-itemtext/internal/ocr"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// Rendering and OCR defaults.
const (
	DefaultRenderTimeout = 30 * time.Second
	DefaultOCRTimeout    = 30 * time.Second
	DefaultSettle        = 5 * time.Second
	DefaultWidth         = 1024
	DefaultHeight        = 768
	DefaultScale         = 2.0
)

type pipelineConfig struct {
	renderTimeout time.Duration
	ocrTimeout    time.Duration
	settle        time.Duration
	width         int
	height        int
	scale         float64
	ocr           ocr.Options
	logger        zerolog.Logger
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		renderTimeout: DefaultRenderTimeout,
		ocrTimeout:    DefaultOCRTimeout,
		settle:        DefaultSettle,
		width:         DefaultWidth,
		height:        DefaultHeight,
		scale:         DefaultScale,
		ocr:           ocr.Options{Language: ocr.DefaultLanguage, PageSegMode: ocr.PSMSingleBlock},
		logger:        zerolog.Nop(),
	}
}

// WithRenderTimeout bounds one render, browser launch included.
// Panics if d <= 0.
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("itemtext: WithRenderTimeout duration must be positive")
	}
	return func(p *Pipeline) {
		p.cfg.renderTimeout = d
	}
}

// WithOCRTimeout bounds one OCR run. Panics if d <= 0.
func WithOCRTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("itemtext: WithOCRTimeout duration must be positive")
	}
	return func(p *Pipeline) {
		p.cfg.ocrTimeout = d
	}
}

// WithSettle sets how long the page may keep loading resources (fonts,
// math typesetting) before the screenshot. Zero skips the wait.
func WithSettle(d time.Duration) Option {
	if d < 0 {
		panic("itemtext: WithSettle duration must not be negative")
	}
	return func(p *Pipeline) {
		p.cfg.settle = d
	}
}

// WithViewport sets the screenshot viewport in CSS pixels and the device
// scale factor. Panics on non-positive values.
func WithViewport(width, height int, scale float64) Option {
	if width <= 0 || height <= 0 || scale <= 0 {
		panic("itemtext: WithViewport dimensions must be positive")
	}
	return func(p *Pipeline) {
		p.cfg.width = width
		p.cfg.height = height
		p.cfg.scale = scale
	}
}

// WithLanguage sets the Tesseract language, e.g. "jpn" or "jpn+eng".
func WithLanguage(lang string) Option {
	return func(p *Pipeline) {
		if lang != "" {
			p.cfg.ocr.Language = lang
		}
	}
}

// WithPageSegMode sets the Tesseract page segmentation mode.
func WithPageSegMode(mode ocr.PageSegMode) Option {
	return func(p *Pipeline) {
		if mode > 0 {
			p.cfg.ocr.PageSegMode = mode
		}
	}
}

// WithLogger sets the logger used for cleanup warnings and timings.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.cfg.logger = l
	}
}

// withImageRenderer replaces the browser backend. Used by tests.
func withImageRenderer(r imageRenderer) Option {
	return func(p *Pipeline) {
		p.engine = r
	}
}

// withRecognizer replaces the OCR engine. Used by tests.
func withRecognizer(fn recognizeFunc) Option {
	return func(p *Pipeline) {
		p.recognize = fn
	}
}
