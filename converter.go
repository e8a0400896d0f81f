package mdprint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdprint/internal/assets"
	"github.com/alnah/go-mdprint/internal/fileutil"
	"github.com/alnah/go-mdprint/internal/katex"
	"github.com/alnah/go-mdprint/internal/pipeline"
	"github.com/alnah/go-mdprint/internal/render"
)

// Compile-time interface implementation checks.
var _ pipeline.Typesetter = (*katex.Engine)(nil)

// Converter runs the Markdown to PDF pipeline. Create with NewConverter and
// call Convert or ConvertFile; a Converter is safe for concurrent use, each
// conversion launching its own browser.
type Converter struct {
	cfg          converterConfig
	logger       *slog.Logger
	katex        *assets.KaTeXDist
	mathCSS      string
	codeCSS      string
	renderer     *pipeline.Renderer
	assembler    *pipeline.Assembler
	orchestrator *render.Orchestrator
	exporter     *render.Exporter
}

// NewConverter resolves the KaTeX distribution, loads the typesetter and
// templates, and validates the render timings. It fails fast when KaTeX
// cannot be found, before any document is read.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConverterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger

	orch, err := render.NewOrchestrator(cfg.render, render.WithObserver(func(from, to render.State) {
		if to.Terminal() {
			logger.Debug("render finished", "state", to)
			return
		}
		logger.Debug("render state", "from", from, "state", to)
	}))
	if err != nil {
		return nil, err
	}

	dist, err := assets.LocateKaTeX(assets.KaTeXCandidates(cfg.katexDir, cfg.searchDirs...)...)
	if err != nil {
		return nil, err
	}
	logger.Debug("katex located", "dir", dist.Dir)

	bundle, err := assets.LoadStyleBundle(dist.Stylesheet)
	if err != nil {
		return nil, err
	}

	engine, err := katex.Load(dist.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetResolution, err)
	}

	resolver, err := assets.NewAssetResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetResolution, err)
	}
	if resolver.HasCustomLoader() {
		logger.Debug("custom assets", "dir", cfg.assetPath)
	}
	assembler, err := pipeline.NewAssembler(resolver)
	if err != nil {
		return nil, err
	}

	rendererOpts := []pipeline.RendererOption{
		pipeline.WithTypesetter(engine),
		pipeline.WithRendererLogger(logger),
	}
	var codeCSS string
	if cfg.highlight {
		hl := pipeline.NewHighlighter(cfg.highlightStyle)
		if codeCSS, err = hl.CSS(); err != nil {
			return nil, err
		}
		logger.Debug("code highlighting", "style", hl.StyleName())
		rendererOpts = append(rendererOpts, pipeline.WithHighlighter(hl))
	}

	return &Converter{
		cfg:          cfg,
		logger:       logger,
		katex:        dist,
		mathCSS:      bundle.Rewrite(),
		codeCSS:      codeCSS,
		renderer:     pipeline.NewRenderer(rendererOpts...),
		assembler:    assembler,
		orchestrator: orch,
		exporter:     render.NewExporter(logger),
	}, nil
}

// KaTeXDir returns the directory the KaTeX distribution was loaded from.
func (c *Converter) KaTeXDir() string {
	return c.katex.Dir
}

// ConvertFile converts the Markdown file at inputPath. An empty outputPath
// writes next to the input with a .pdf extension. A missing input fails
// with ErrInputNotFound before any stage runs.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	in, err := ReadInput(inputPath, outputPath)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, in)
}

// ReadInput reads the Markdown file at inputPath into an Input whose title
// fallback and image paths are relative to the file. An empty outputPath
// becomes the input path with a .pdf extension.
func ReadInput(inputPath, outputPath string) (Input, error) {
	if fileutil.IsURL(inputPath) {
		return Input{}, fmt.Errorf("%w: remote input not supported: %s", ErrInputNotFound, inputPath)
	}
	if !fileutil.FileExists(inputPath) {
		return Input{}, fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
	}
	data, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInputNotFound, err)
	}

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return Input{}, fmt.Errorf("resolving input path: %w", err)
	}
	if outputPath == "" {
		outputPath = fileutil.DefaultOutputPath(inputPath)
	}

	return Input{
		Markdown:   string(data),
		Filename:   filepath.Base(inputPath),
		SourceDir:  filepath.Dir(absInput),
		OutputPath: outputPath,
	}, nil
}

// Convert runs the full pipeline for one document. The render document and
// the browser are released on every path, including failures and
// cancellation. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (c *Converter) Convert(ctx context.Context, in Input) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	if in.OutputPath == "" {
		return nil, ErrNoOutputPath
	}

	doc, err := c.assemble(ctx, in)
	if err != nil {
		return nil, err
	}
	res = &Result{Title: doc.Title, Diagrams: doc.Placeholders, HTML: doc.HTML}

	if in.HTMLOnly {
		path := htmlOutputPath(in.OutputPath)
		if err := os.WriteFile(path, []byte(doc.HTML), 0o644); err != nil { // #nosec G306 -- output is a user document
			return nil, fmt.Errorf("writing HTML: %w", err)
		}
		c.logger.Info("html written", "path", path)
		res.OutputPath = path
		return res, nil
	}

	art, htmlPath, err := c.capture(ctx, doc, in.OutputPath)
	if err != nil {
		return nil, err
	}
	res.OutputPath = art.Path
	res.HTMLPath = htmlPath
	res.Size = art.Size
	res.Pages = art.Pages
	res.PDF = art.Data
	c.logger.Info("pdf written", "path", art.Path, "size", art.Size, "pages", art.Pages)
	return res, nil
}

// assemble renders the Markdown and composes the complete document.
func (c *Converter) assemble(ctx context.Context, in Input) (*pipeline.Document, error) {
	md := pipeline.Preprocess(in.Markdown)
	title := in.Title
	if title == "" {
		title = pipeline.ExtractTitle(md, in.Filename)
	}

	c.logger.Info("rendering markdown", "title", title)
	frag, err := c.renderer.Render(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	if in.SourceDir != "" {
		frag.HTML, err = pipeline.RewriteImagePaths(frag.HTML, in.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting image paths: %w", err)
		}
	}

	doc, err := c.assembler.Assemble(frag, pipeline.AssembleInput{
		Title:   title,
		MathCSS: c.mathCSS,
		CodeCSS: c.codeCSS,
	})
	if err != nil {
		return nil, err
	}
	if doc.Placeholders != frag.Diagrams {
		c.logger.Debug("raw html adds diagram placeholders", "fences", frag.Diagrams, "placeholders", doc.Placeholders)
	}
	return doc, nil
}

// capture writes the render document next to outputPath, loads it in a
// fresh browser, waits for it to be ready and prints it. The returned HTML
// path is set only when the render document is kept.
func (c *Converter) capture(ctx context.Context, doc *pipeline.Document, outputPath string) (art *render.Artifact, htmlPath string, err error) {
	transient := fileutil.TransientPath(outputPath)
	cleanup, err := fileutil.WriteTransient(transient, doc.HTML)
	if err != nil {
		return nil, "", err
	}
	if c.cfg.keepHTML {
		htmlPath = transient
		c.logger.Info("keeping render document", "path", transient)
	} else {
		defer cleanup()
	}

	url, err := assets.FileURL(transient)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	c.logger.Info("launching browser")
	browser, err := c.cfg.launch(ctx, c.cfg.browserBin, c.cfg.noSandbox)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			c.logger.Debug("browser close", "error", cerr)
		}
	}()

	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	defer func() { _ = page.Close() }()

	c.logger.Info("loading document", "diagrams", doc.Placeholders)
	if err := c.orchestrator.Run(ctx, page, url, doc.Placeholders); err != nil {
		return nil, "", err
	}

	art, err = c.exporter.Export(ctx, page, outputPath)
	if err != nil {
		return nil, "", err
	}
	return art, htmlPath, nil
}

// htmlOutputPath replaces a trailing .pdf with .html, or appends .html.
func htmlOutputPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	if strings.EqualFold(ext, ".pdf") {
		return strings.TrimSuffix(outputPath, ext) + ".html"
	}
	return outputPath + ".html"
}

// IsTimeout reports whether err is one of the render timeouts.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrNavigationTimeout) || errors.Is(err, ErrDiagramRenderTimeout)
}
