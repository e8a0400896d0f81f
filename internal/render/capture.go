package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page geometry. A4 with print margins; the values are fixed, not tunable.
const (
	A4WidthInches    = 8.27
	A4HeightInches   = 11.69
	cmPerInch        = 2.54
	MarginVerticalCM = 2.0
	MarginSideCM     = 1.5
)

// FooterTemplate numbers every page as "current / total". The browser fills
// the pageNumber and totalPages spans.
const FooterTemplate = `<div style="font-size: 8pt; width: 100%; text-align: center; padding: 0 1cm; color: #666; font-family: sans-serif;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// HeaderTemplate is intentionally blank; a header template must still be set
// or the browser prints its default title and date.
const HeaderTemplate = `<div></div>`

// PrintOptions describes one print-to-PDF call. Sizes are in inches.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	PrintBackground bool
	HeaderTemplate  string
	FooterTemplate  string
}

// DefaultPrintOptions returns the fixed capture geometry.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{
		PaperWidth:      A4WidthInches,
		PaperHeight:     A4HeightInches,
		MarginTop:       MarginVerticalCM / cmPerInch,
		MarginBottom:    MarginVerticalCM / cmPerInch,
		MarginLeft:      MarginSideCM / cmPerInch,
		MarginRight:     MarginSideCM / cmPerInch,
		PrintBackground: true,
		HeaderTemplate:  HeaderTemplate,
		FooterTemplate:  FooterTemplate,
	}
}

// Artifact is a captured document.
type Artifact struct {
	Path  string // empty when only printed to memory
	Data  []byte
	Size  int64
	Pages int // 0 when the page count could not be read
}

// Exporter captures a ready page.
type Exporter struct {
	opts   PrintOptions
	logger *slog.Logger
}

// NewExporter returns an exporter with the fixed print geometry. A nil
// logger discards output.
func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{opts: DefaultPrintOptions(), logger: logger}
}

// Print captures page to memory. The page must have reached ReadyToCapture.
func (e *Exporter) Print(ctx context.Context, page Page) (*Artifact, error) {
	data, err := page.PrintPDF(ctx, e.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: browser returned an empty document", ErrCaptureFailure)
	}

	pages, err := CountPages(data)
	if err != nil {
		e.logger.Warn("page count unavailable", "error", err)
	}

	return &Artifact{Data: data, Size: int64(len(data)), Pages: pages}, nil
}

// Export captures page and writes the result to outputPath.
func (e *Exporter) Export(ctx context.Context, page Page, outputPath string) (*Artifact, error) {
	art, err := e.Print(ctx, page)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, art.Data, 0o644); err != nil { // #nosec G306 -- output is a user document
		return nil, fmt.Errorf("%w: writing %s: %w", ErrCaptureFailure, outputPath, err)
	}
	art.Path = outputPath
	return art, nil
}

// CountPages returns the number of pages in a PDF document.
func CountPages(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}
