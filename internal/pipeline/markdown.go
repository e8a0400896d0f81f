package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Fragment is a rendered HTML body.
type Fragment struct {
	HTML string
	// Diagrams is the number of diagram fences the renderer emitted. Raw
	// HTML in the source may add more placeholders; the assembled document
	// is the authoritative count.
	Diagrams int
}

// Renderer converts Markdown to an HTML fragment.
type Renderer struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

type rendererConfig struct {
	typesetter  Typesetter
	highlighter *Highlighter
	logger      *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*rendererConfig)

// WithTypesetter sets the math typesetter. Without one every math span
// renders as an error span.
func WithTypesetter(ts Typesetter) RendererOption {
	return func(c *rendererConfig) {
		c.typesetter = ts
	}
}

// WithHighlighter enables syntax highlighting of generic code fences.
func WithHighlighter(h *Highlighter) RendererOption {
	return func(c *rendererConfig) {
		c.highlighter = h
	}
}

// WithRendererLogger sets the logger for non-fatal problems.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(c *rendererConfig) {
		c.logger = l
	}
}

// NewRenderer creates a Renderer with GitHub flavored Markdown, footnotes,
// typographic punctuation, math and diagram fences. Raw HTML is passed
// through.
func NewRenderer(opts ...RendererOption) *Renderer {
	cfg := rendererConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,         // tables, strikethrough, linkify, task lists
			extension.Footnote,    // [^1] footnotes
			extension.Typographer, // smart quotes and dashes
			&mathExtension{ts: cfg.typesetter, logger: cfg.logger},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&fenceRenderer{hl: cfg.highlighter}, 100)),
		),
	)
	return &Renderer{md: md, logger: cfg.logger}
}

// Render converts md to a fragment. Goldmark is not context aware, so the
// conversion runs in a goroutine and Render returns as soon as ctx ends; the
// typesetter receives ctx and stops at its next check.
func (r *Renderer) Render(ctx context.Context, md string) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}
	if strings.TrimSpace(md) == "" {
		return Fragment{}, ErrEmptyMarkdown
	}

	type result struct {
		frag Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrHTMLConversion, p)}
			}
		}()
		frag, err := r.convert(ctx, []byte(md))
		done <- result{frag: frag, err: err}
	}()

	select {
	case <-ctx.Done():
		return Fragment{}, ctx.Err()
	case res := <-done:
		return res.frag, res.err
	}
}

func (r *Renderer) convert(ctx context.Context, source []byte) (Fragment, error) {
	pc := parser.NewContext()
	pc.Set(renderContextKey, ctx)

	doc := r.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return Fragment{HTML: buf.String(), Diagrams: countDiagrams(doc, source)}, nil
}
