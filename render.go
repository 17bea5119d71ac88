package itemtext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-itemtext/internal/fileutil"
	"github.com/alnah/go-itemtext/internal/markup"
	"github.com/alnah/go-itemtext/internal/process"
)

// imageRenderer paints a local HTML file into a PNG. It abstracts the
// browser so the pipeline can be tested without Chrome.
type imageRenderer interface {
	RenderToFile(ctx context.Context, htmlPath, outPath string) error
	Close() error
}

// Compile-time interface check.
var _ imageRenderer = (*rodRenderer)(nil)

const assetPerm = 0o600

// RenderOutput is what ContentRenderer produced: Text for pass-through
// input, AssetPath for rendered markup. Exactly one of them is meaningful.
type RenderOutput struct {
	Text      string
	AssetPath string
}

// Rendered reports whether an asset was written.
func (o RenderOutput) Rendered() bool {
	return o.AssetPath != ""
}

// ContentRenderer turns markup into a PNG asset. Text without markup is
// returned as is.
type ContentRenderer struct {
	assets  *AssetManager
	engine  imageRenderer
	lang    string
	timeout time.Duration
}

// Render returns markupText unchanged when it holds no tag. Otherwise it
// renders it to the asset named after identifier. On failure the partial
// asset is removed and no path is reported.
func (r *ContentRenderer) Render(ctx context.Context, markupText, identifier string) (RenderOutput, error) {
	if !markup.HasMarkup(markupText) {
		return RenderOutput{Text: markupText}, nil
	}
	path, err := r.renderAsset(ctx, markupText, identifier)
	if err != nil {
		return RenderOutput{}, err
	}
	return RenderOutput{AssetPath: path}, nil
}

func (r *ContentRenderer) renderAsset(ctx context.Context, markupText, identifier string) (string, error) {
	if isBlank(identifier) {
		return "", stageError(ErrRender, ErrEmptyIdentifier, nil)
	}

	page, err := markup.Page(r.lang, markupText)
	if err != nil {
		return "", stageError(ErrRender, ErrInvalidMarkup, err)
	}

	htmlPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return "", stageError(ErrRender, ErrAssetWrite, err)
	}
	defer cleanup()

	if err := r.assets.EnsureDir(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	out := r.assets.PathFor(identifier)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.engine.RenderToFile(ctx, htmlPath, out); err != nil {
		r.assets.Remove(out)
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	if !fileutil.FileExists(out) {
		return "", stageError(ErrRender, ErrScreenshot, errors.New("renderer wrote no image"))
	}
	return out, nil
}

// pageLang maps the first Tesseract language code to an HTML lang value.
func pageLang(ocrLang string) string {
	first, _, _ := strings.Cut(ocrLang, "+")
	switch first {
	case "eng":
		return "en"
	case "chi_sim", "chi_tra":
		return "zh"
	case "kor":
		return "ko"
	default:
		return markup.DefaultLang
	}
}

// rodRenderer implements imageRenderer with headless Chrome via go-rod.
// The browser is launched on first use and reused until Close. Not safe for
// concurrent use; the pool hands each worker its own renderer.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	width    int
	height   int
	scale    float64
	settle   time.Duration
	logger   zerolog.Logger
}

func newRodRenderer(cfg pipelineConfig) *rodRenderer {
	return &rodRenderer{
		width:  cfg.width,
		height: cfg.height,
		scale:  cfg.scale,
		settle: cfg.settle,
		logger: cfg.logger,
	}
}

// launchResult carries a finished launch back to ensureBrowser.
type launchResult struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	err      error
}

// ensureBrowser lazily launches and connects to the browser, giving up when
// ctx is done. The launch wait is bound to ctx; the connection is not, so a
// later cancellation never tears down a browser the pool still uses.
func (r *rodRenderer) ensureBrowser(ctx context.Context) error {
	if r.browser != nil {
		return nil
	}

	done := make(chan launchResult, 1)
	go func() { done <- launchBrowser(ctx) }()

	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		r.launcher = res.launcher
		r.browser = res.browser
		r.logger.Debug().Int("pid", res.launcher.PID()).Msg("browser launched")
		return nil
	case <-ctx.Done():
		// A launch that still completes is shut down once it reports back.
		go func() {
			res := <-done
			if res.err != nil {
				return
			}
			if err := res.browser.Close(); err != nil {
				process.KillTree(res.launcher.PID())
				res.launcher.Kill()
			}
			res.launcher.Cleanup()
		}()
		return fmt.Errorf("%w: %w", ErrBrowserConnect, ctx.Err())
	}
}

func launchBrowser(ctx context.Context) launchResult {
	l := launcher.New().
		Context(ctx).
		Set("disable-gpu").
		Set("hide-scrollbars")

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	// Launch kills the process itself when ctx ends before Chrome is up.
	u, err := l.Launch()
	if err != nil {
		return launchResult{err: fmt.Errorf("%w: %v", ErrBrowserConnect, err)}
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillTree(l.PID())
		l.Kill()
		return launchResult{err: fmt.Errorf("%w: %v", ErrBrowserConnect, err)}
	}
	return launchResult{launcher: l, browser: browser}
}

// RenderToFile loads htmlPath into a fresh tab at the configured viewport
// and writes a PNG screenshot of the viewport to outPath.
func (r *rodRenderer) RenderToFile(ctx context.Context, htmlPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.ensureBrowser(ctx); err != nil {
		return err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.width,
		Height:            r.height,
		DeviceScaleFactor: r.scale,
	}); err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	if err := p.Navigate("file://" + htmlPath); err != nil {
		return r.loadError(ctx, err)
	}
	if err := p.WaitLoad(); err != nil {
		return r.loadError(ctx, err)
	}

	// Fonts and typesetting scripts may still be working after load. Running
	// out of settle time is expected; the screenshot is taken regardless.
	if r.settle > 0 {
		_ = p.WaitIdle(r.settle)
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrScreenshot, err)
	}

	if err := os.WriteFile(outPath, data, assetPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetWrite, err)
	}
	return nil
}

// loadError reports a cancelled context as such rather than as a load failure.
func (r *rodRenderer) loadError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrPageLoad, err)
}

// Close shuts the browser down. If Chrome does not exit cleanly its whole
// process tree is killed.
func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	if err != nil {
		process.KillTree(r.launcher.PID())
		r.launcher.Kill()
	}
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}
