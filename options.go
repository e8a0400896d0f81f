package mdprint

import (
	"context"
	"log/slog"
	"time"

	"github.com/alnah/go-mdprint/internal/render"
)

// Option configures a Converter.
type Option func(*converterConfig)

// converterConfig holds the settings collected from options.
type converterConfig struct {
	logger         *slog.Logger
	render         render.Config
	timeout        time.Duration // whole conversion, 0 means none
	katexDir       string
	searchDirs     []string
	assetPath      string
	highlight      bool
	highlightStyle string
	browserBin     string
	noSandbox      bool
	keepHTML       bool

	// launch starts the browser for one conversion. Tests replace it.
	launch func(ctx context.Context, bin string, noSandbox bool) (render.Browser, error)
}

func defaultConverterConfig() converterConfig {
	return converterConfig{
		logger: slog.New(slog.DiscardHandler),
		render: render.DefaultConfig(),
		launch: launchBrowser,
	}
}

// WithLogger sets the logger for stage progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *converterConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderConfig replaces the render timings. The value is validated by
// NewConverter.
func WithRenderConfig(cfg RenderConfig) Option {
	return func(c *converterConfig) {
		c.render = cfg
	}
}

// WithTimeout bounds a whole conversion, on top of the per-stage timeouts.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdprint: WithTimeout duration must be positive")
	}
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithKaTeXDir names the KaTeX distribution directory (the one holding
// katex.min.css and katex.min.js). It is searched before any other location.
func WithKaTeXDir(dir string) Option {
	return func(c *converterConfig) {
		c.katexDir = dir
	}
}

// WithSearchDirs adds directories whose node_modules/katex/dist is searched
// for KaTeX, typically the working directory and the document directory.
func WithSearchDirs(dirs ...string) Option {
	return func(c *converterConfig) {
		c.searchDirs = append(c.searchDirs, dirs...)
	}
}

// WithAssetPath loads the theme stylesheet and document template from a
// directory (styles/print.css, templates/document.html), falling back to the
// embedded ones for anything missing.
func WithAssetPath(path string) Option {
	return func(c *converterConfig) {
		c.assetPath = path
	}
}

// WithHighlighting enables syntax highlighting of code blocks with the named
// chroma style. An empty name selects the default style.
func WithHighlighting(style string) Option {
	return func(c *converterConfig) {
		c.highlight = true
		c.highlightStyle = style
	}
}

// WithBrowserBin sets the Chrome or Chromium binary. Without it
// ROD_BROWSER_BIN is consulted, then rod's own lookup and download.
func WithBrowserBin(path string) Option {
	return func(c *converterConfig) {
		c.browserBin = path
	}
}

// WithNoSandbox disables the browser sandbox, which containers usually need.
func WithNoSandbox(enabled bool) Option {
	return func(c *converterConfig) {
		c.noSandbox = enabled
	}
}

// WithKeepHTML keeps the render document (<output>.tmp.render.html) after
// conversion for debugging. It is the one exception to the render document
// being removed on every outcome: once enabled the file stays on success,
// failure and cancellation alike.
func WithKeepHTML(enabled bool) Option {
	return func(c *converterConfig) {
		c.keepHTML = enabled
	}
}
