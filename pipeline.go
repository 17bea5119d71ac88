package itemtext

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-itemtext/internal/markup"
	"github.com/alnah/go-itemtext/internal/ocr"
)

// Pipeline converts item fields to plain text: markup is rendered to an
// image and read back with OCR, anything else passes through.
//
// A Pipeline owns one browser and is not safe for concurrent use; use a
// PipelinePool to convert in parallel.
type Pipeline struct {
	cfg       pipelineConfig
	assets    *AssetManager
	engine    imageRenderer
	recognize recognizeFunc
	renderer  *ContentRenderer
	extractor *TextExtractor
}

// NewPipeline creates a Pipeline writing its assets through assets.
// The browser is started on the first conversion that needs it.
// Panics if assets is nil.
func NewPipeline(assets *AssetManager, opts ...Option) *Pipeline {
	if assets == nil {
		panic("itemtext: NewPipeline requires an AssetManager")
	}

	p := &Pipeline{
		cfg:    defaultPipelineConfig(),
		assets: assets,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.engine == nil {
		p.engine = newRodRenderer(p.cfg)
	}
	if p.recognize == nil {
		p.recognize = ocr.Recognize
	}

	p.renderer = &ContentRenderer{
		assets:  assets,
		engine:  p.engine,
		lang:    pageLang(p.cfg.ocr.Language),
		timeout: p.cfg.renderTimeout,
	}
	p.extractor = &TextExtractor{
		recognize: p.recognize,
		opts:      p.cfg.ocr,
		timeout:   p.cfg.ocrTimeout,
	}
	return p
}

// Renderer returns the pipeline's renderer for standalone use.
func (p *Pipeline) Renderer() *ContentRenderer { return p.renderer }

// Extractor returns the pipeline's OCR stage for standalone use.
func (p *Pipeline) Extractor() *TextExtractor { return p.extractor }

// Assets returns the asset manager the pipeline writes through.
func (p *Pipeline) Assets() *AssetManager { return p.assets }

// Convert runs one request to a terminal state. It never panics and never
// returns a nil-state result: failures are reported in the result's Err.
//
// When extraction fails after a successful render, AssetPath still names the
// rendered image so the caller can Dispose of it.
func (p *Pipeline) Convert(ctx context.Context, req ConversionRequest) ConversionResult {
	start := time.Now()
	res := newConversion(p, req).run(ctx)
	res.Duration = time.Since(start)

	ev := p.cfg.logger.Debug()
	if res.Failed() {
		ev = p.cfg.logger.Warn().Err(res.Err)
	}
	ev.Str("id", req.Identifier).
		Str("kind", string(req.Kind)).
		Stringer("state", res.State).
		Dur("duration", res.Duration).
		Msg("conversion finished")
	return res
}

// Dispose removes the asset a result refers to, if any.
func (p *Pipeline) Dispose(res ConversionResult) {
	p.assets.Remove(res.AssetPath)
}

// Close releases the browser.
func (p *Pipeline) Close() error {
	return p.engine.Close()
}

// conversion is the single-use state machine behind Convert.
type conversion struct {
	p     *Pipeline
	req   ConversionRequest
	state State
	trace []State
	asset string
}

func newConversion(p *Pipeline, req ConversionRequest) *conversion {
	return &conversion{
		p:     p,
		req:   req,
		state: StateStart,
		trace: []State{StateStart},
	}
}

func (c *conversion) run(ctx context.Context) (res ConversionResult) {
	if c.state != StateStart {
		return ConversionResult{State: StateFailed, Err: ErrConversionFinished}
	}

	defer func() {
		if r := recover(); r != nil {
			res = c.fail(fmt.Errorf("%w: panic in %s: %v", c.stageSentinel(), c.state, r))
		}
	}()

	c.enter(StateDetectMarkup)
	if !markup.HasMarkup(c.req.Markup) {
		c.enter(StatePassThrough)
		return c.done(c.req.Markup)
	}

	c.enter(StateRender)
	out, err := c.p.renderer.Render(ctx, c.req.Markup, c.req.Identifier)
	if err != nil {
		return c.fail(err)
	}
	c.asset = out.AssetPath

	c.enter(StateExtract)
	text, err := c.p.extractor.Extract(ctx, c.asset)
	if err != nil {
		return c.fail(err)
	}
	return c.done(text)
}

func (c *conversion) enter(s State) {
	c.state = s
	c.trace = append(c.trace, s)
}

func (c *conversion) done(text string) ConversionResult {
	c.enter(StateDone)
	return ConversionResult{
		State:     StateDone,
		Text:      text,
		AssetPath: c.asset,
		Trace:     c.trace,
	}
}

func (c *conversion) fail(err error) ConversionResult {
	c.enter(StateFailed)
	return ConversionResult{
		State:     StateFailed,
		AssetPath: c.asset,
		Err:       err,
		Trace:     c.trace,
	}
}

func (c *conversion) stageSentinel() error {
	if c.state == StateExtract {
		return ErrExtraction
	}
	return ErrRender
}
