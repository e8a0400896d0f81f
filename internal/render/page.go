package render

import (
	"context"
	"time"
)

// Selectors observed in the live document.
const (
	// PlaceholderSelector matches diagram placeholders emitted by the renderer.
	PlaceholderSelector = ".mermaid"

	// RenderedSelector matches completed diagram outputs. Only direct children
	// count, so inner <svg> elements of one diagram are not counted twice.
	RenderedSelector = ".mermaid > svg"
)

// Page is one browser tab as seen by the orchestrator and the exporter.
type Page interface {
	// Load navigates to url and returns once the load event fired and no
	// request has been in flight for idle.
	Load(ctx context.Context, url string, idle time.Duration) error

	// Count returns the number of elements matching a CSS selector.
	Count(ctx context.Context, selector string) (int, error)

	// PrintPDF prints the current document.
	PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error)

	// Close releases the tab.
	Close() error
}

// Browser hands out pages and owns the browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}
