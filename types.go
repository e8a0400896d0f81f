package mdprint

import "github.com/alnah/go-mdprint/internal/render"

// Input is one document to convert.
type Input struct {
	// Markdown is the document source. Required.
	Markdown string

	// Title overrides the document title. Empty derives it from the first
	// top-level heading, then Filename.
	Title string

	// Filename is used for the title when the document has no top-level
	// heading. Only its stem is used.
	Filename string

	// SourceDir resolves relative image paths. Empty leaves them as written.
	SourceDir string

	// OutputPath is where the PDF is written. The render document is
	// written next to it while the conversion runs. Required.
	OutputPath string

	// HTMLOnly writes the assembled document as <output>.html and skips the
	// browser entirely.
	HTMLOnly bool
}

// Result describes a finished conversion.
type Result struct {
	OutputPath string // PDF path, or the HTML path with HTMLOnly
	HTMLPath   string // kept render document, set with WithKeepHTML
	Title      string
	Diagrams   int // diagram placeholders in the document
	Size       int64
	Pages      int // 0 when the page count could not be read
	HTML       string
	PDF        []byte
}

// RenderConfig holds the render timings: navigation timeout, network idle
// window, diagram timeout, poll interval and settle delay.
type RenderConfig = render.Config

// DefaultRenderConfig returns the default render timings.
func DefaultRenderConfig() RenderConfig {
	return render.DefaultConfig()
}
