package render_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alnah/go-mdprint/internal/render"
)

// fakePage scripts the observable behavior of a browser tab.
type fakePage struct {
	mu sync.Mutex

	loadErr   error
	loadBlock bool // block until ctx is done
	loadDelay time.Duration

	placeholders int
	// renderedAfter is the number of rendered-selector polls after which all
	// diagrams report as rendered. Negative never completes.
	renderedAfter int
	renderedTotal int
	countErr      error

	pdf      []byte
	printErr error

	loads        []string
	idle         time.Duration
	renderPolls  int
	renderCounts []int
	prints       int
	printOpts    render.PrintOptions
	closed       bool
}

func (p *fakePage) Load(ctx context.Context, url string, idle time.Duration) error {
	p.mu.Lock()
	p.loads = append(p.loads, url)
	p.idle = idle
	block, delay, err := p.loadBlock, p.loadDelay, p.loadErr
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (p *fakePage) Count(_ context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.countErr != nil {
		return 0, p.countErr
	}
	switch selector {
	case render.PlaceholderSelector:
		return p.placeholders, nil
	case render.RenderedSelector:
		p.renderPolls++
		n := 0
		if p.renderedAfter >= 0 && p.renderPolls > p.renderedAfter {
			n = p.renderedTotal
		}
		p.renderCounts = append(p.renderCounts, n)
		return n, nil
	}
	return 0, errors.New("unexpected selector " + selector)
}

func (p *fakePage) PrintPDF(_ context.Context, opts render.PrintOptions) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prints++
	p.printOpts = opts
	return p.pdf, p.printErr
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// fastConfig returns timings short enough for unit tests.
func fastConfig() render.Config {
	return render.Config{
		NavigationTimeout: 200 * time.Millisecond,
		NetworkIdle:       10 * time.Millisecond,
		DiagramTimeout:    150 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
		SettleDelay:       5 * time.Millisecond,
	}
}

// transitions records observer calls.
type transitions struct {
	mu   sync.Mutex
	seen []render.State
}

func (tr *transitions) observe(_, to render.State) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.seen = append(tr.seen, to)
}

func (tr *transitions) states() []render.State {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]render.State(nil), tr.seen...)
}
