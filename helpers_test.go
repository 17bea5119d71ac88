package itemtext

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alnah/go-itemtext/internal/ocr"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// mockRenderer implements imageRenderer by writing a small PNG.
type mockRenderer struct {
	mu       sync.Mutex
	Err      error
	Data     []byte // written instead of a PNG when set
	Partial  bool   // write the file, then fail with Err
	calls    []string
	closed   atomic.Int32
	htmlSeen []string
}

func (m *mockRenderer) RenderToFile(ctx context.Context, htmlPath, outPath string) error {
	m.mu.Lock()
	m.calls = append(m.calls, outPath)
	if content, err := os.ReadFile(htmlPath); err == nil {
		m.htmlSeen = append(m.htmlSeen, string(content))
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Err != nil && !m.Partial {
		return m.Err
	}

	data := m.Data
	if data == nil {
		data = testPNG()
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return err
	}
	return m.Err
}

func (m *mockRenderer) Close() error {
	m.closed.Add(1)
	return nil
}

func (m *mockRenderer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRenderer) HTML() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.htmlSeen...)
}

// mockRecognizer returns a fixed text or error and records the options.
type mockRecognizer struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Panic bool
	opts  []ocr.Options
}

func (m *mockRecognizer) Recognize(data []byte, opts ocr.Options) (string, error) {
	m.mu.Lock()
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.Panic {
		panic("tesseract crashed")
	}
	return m.Text, m.Err
}

func (m *mockRecognizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.opts)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// testPNG encodes a 4x4 white image.
func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func newTestAssets(t *testing.T) *AssetManager {
	t.Helper()

	m, err := NewAssetManager(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAssetManager() error = %v", err)
	}
	return m
}

func newTestPipeline(t *testing.T, r *mockRenderer, rec *mockRecognizer, opts ...Option) *Pipeline {
	t.Helper()

	opts = append([]Option{
		withImageRenderer(r),
		withRecognizer(rec.Recognize),
		WithSettle(0),
	}, opts...)
	return NewPipeline(newTestAssets(t), opts...)
}

// assetCount returns the number of files in dir.
func assetCount(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", dir, err)
	}
	return len(entries)
}
