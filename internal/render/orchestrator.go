package render

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Observer is notified of every state transition, in order.
type Observer func(from, to State)

// Orchestrator runs one page through the render lifecycle.
type Orchestrator struct {
	cfg      Config
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver installs a transition hook.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// NewOrchestrator validates cfg and returns an orchestrator bound to it.
func NewOrchestrator(cfg Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Config returns the timings in use.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// run tracks the current state of one Run call.
type run struct {
	state    State
	observer Observer
}

func (r *run) enter(to State) {
	from := r.state
	r.state = to
	if r.observer != nil {
		r.observer(from, to)
	}
}

func (r *run) fail(err error) error {
	r.enter(StateFailed)
	return err
}

// Run loads url into page and blocks until the document is ready to be
// captured. expected is the number of diagram placeholders in the assembled
// document. A nil return means the page reached ReadyToCapture; any error
// means it reached Failed and must not be captured.
func (o *Orchestrator) Run(ctx context.Context, page Page, url string, expected int) error {
	if expected < 0 {
		return fmt.Errorf("%w: negative diagram count %d", ErrInvalidConfig, expected)
	}

	r := &run{state: StateLoading, observer: o.observer}

	if err := o.load(ctx, page, url); err != nil {
		return r.fail(err)
	}
	r.enter(StateNetworkIdle)

	found, err := page.Count(ctx, PlaceholderSelector)
	if err != nil {
		return r.fail(evalError(ctx, "count placeholders", err))
	}
	if found != expected {
		return r.fail(fmt.Errorf("%w: document has %d, page has %d", ErrPlaceholderCountMismatch, expected, found))
	}

	if expected > 0 {
		r.enter(StateAwaitingDiagrams)
		if err := o.awaitDiagrams(ctx, page, expected); err != nil {
			return r.fail(err)
		}
	}

	r.enter(StateSettling)
	if err := o.settle(ctx); err != nil {
		return r.fail(err)
	}

	r.enter(StateReadyToCapture)
	return nil
}

func (o *Orchestrator) load(ctx context.Context, page Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, o.cfg.NavigationTimeout)
	defer cancel()

	err := page.Load(navCtx, url, o.cfg.NetworkIdle)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrNavigation, ctx.Err())
	}
	if errors.Is(navCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: network not idle after %v", ErrNavigationTimeout, o.cfg.NavigationTimeout)
	}
	return fmt.Errorf("%w: %v", ErrNavigation, err)
}

// awaitDiagrams polls until every placeholder holds a rendered output. The
// deadline is measured on the monotonic clock.
func (o *Orchestrator) awaitDiagrams(ctx context.Context, page Page, expected int) error {
	deadline := time.Now().Add(o.cfg.DiagramTimeout)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	rendered := 0
	for {
		n, err := page.Count(pollCtx, RenderedSelector)
		switch {
		case err == nil:
			rendered = n
			if rendered >= expected {
				return nil
			}
		case ctx.Err() != nil:
			return evalError(ctx, "count rendered diagrams", err)
		case pollCtx.Err() == nil:
			return evalError(ctx, "count rendered diagrams", err)
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %d of %d rendered after %v", ErrDiagramRenderTimeout, rendered, expected, o.cfg.DiagramTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrPageEval, ctx.Err())
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrPageEval, ctx.Err())
			}
			return fmt.Errorf("%w: %d of %d rendered after %v", ErrDiagramRenderTimeout, rendered, expected, o.cfg.DiagramTimeout)
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) settle(ctx context.Context) error {
	if o.cfg.SettleDelay == 0 {
		return nil
	}
	timer := time.NewTimer(o.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPageEval, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func evalError(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %w", ErrPageEval, what, ctx.Err())
	}
	return fmt.Errorf("%w: %s: %v", ErrPageEval, what, err)
}
