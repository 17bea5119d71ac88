package itemtext

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes and Tesseract.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("pipeline pool closed")

// PipelinePool hands out Pipelines to conversion workers. Each pipeline owns
// a browser, so the pool bounds how many Chrome instances a run starts.
// Pipelines are built on demand, up to the pool size, and reused after
// Release.
type PipelinePool struct {
	size  int
	newFn func() *Pipeline

	idle  chan *Pipeline // released pipelines, never closed
	slots chan struct{}  // one token per pipeline not yet built
	done  chan struct{}  // closed by Close

	mu     sync.Mutex
	all    []*Pipeline
	closed bool
}

// NewPipelinePool creates a pool of at most n pipelines built by newFn.
func NewPipelinePool(n int, newFn func() *Pipeline) *PipelinePool {
	if n < 1 {
		n = 1
	}

	slots := make(chan struct{}, n)
	for range n {
		slots <- struct{}{}
	}
	return &PipelinePool{
		size:  n,
		newFn: newFn,
		idle:  make(chan *Pipeline, n),
		slots: slots,
		done:  make(chan struct{}),
	}
}

// Acquire returns an idle pipeline, builds a new one while capacity remains,
// or waits for a Release. It fails with ctx's error when ctx ends first and
// with ErrPoolClosed after Close.
func (p *PipelinePool) Acquire(ctx context.Context) (*Pipeline, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	// Reuse before building: every pipeline costs a browser.
	select {
	case pl := <-p.idle:
		return pl, nil
	default:
	}

	select {
	case pl := <-p.idle:
		return pl, nil
	case <-p.slots:
		return p.build()
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *PipelinePool) build() (*Pipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	pl := p.newFn()
	p.all = append(p.all, pl)
	return pl, nil
}

// Release hands pl back for reuse. After Close it does nothing; the pipeline
// was already closed with the pool.
func (p *PipelinePool) Release(pl *Pipeline) {
	if pl == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	// idle holds one seat per pipeline that can exist, so this cannot block.
	select {
	case p.idle <- pl:
	default:
	}
}

// Close releases every browser the pool started, including pipelines still
// held by workers.
func (p *PipelinePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	all := p.all
	p.mu.Unlock()

	var errs []error
	for _, pl := range all {
		if err := pl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PipelinePool) Size() int {
	return p.size
}

// ResolvePoolSize picks the worker count: an explicit value wins, otherwise
// half of GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
