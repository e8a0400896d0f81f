package pipeline

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alnah/go-mdprint/internal/assets"
	"github.com/alnah/go-mdprint/internal/render"
)

// DiagramRuntimeURL is the diagram runtime script. It is the only resource
// an assembled document fetches from the network.
const DiagramRuntimeURL = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"

// diagramConfig is the fixed initialization passed to the diagram runtime.
type diagramConfig struct {
	StartOnLoad bool            `json:"startOnLoad"`
	Theme       string          `json:"theme"`
	Flowchart   flowchartConfig `json:"flowchart"`
	Sequence    sequenceConfig  `json:"sequence"`
	Gantt       ganttConfig     `json:"gantt"`
}

type flowchartConfig struct {
	Curve   string `json:"curve"`
	Padding int    `json:"padding"`
}

type sequenceConfig struct {
	ShowSequenceNumbers bool `json:"showSequenceNumbers"`
	DiagramMarginX      int  `json:"diagramMarginX"`
	DiagramMarginY      int  `json:"diagramMarginY"`
}

type ganttConfig struct {
	TitleTopMargin int `json:"titleTopMargin"`
	BarHeight      int `json:"barHeight"`
}

var defaultDiagramConfig = diagramConfig{
	StartOnLoad: true,
	Theme:       "default",
	Flowchart:   flowchartConfig{Curve: "basis", Padding: 20},
	Sequence:    sequenceConfig{ShowSequenceNumbers: true, DiagramMarginX: 50, DiagramMarginY: 10},
	Gantt:       ganttConfig{TitleTopMargin: 25, BarHeight: 20},
}

// AssembleInput holds everything the document needs besides the body.
type AssembleInput struct {
	Title   string
	MathCSS string // patched KaTeX stylesheet
	CodeCSS string // highlight stylesheet, empty when highlighting is off
}

// Document is a complete HTML document.
type Document struct {
	HTML  string
	Title string
	// Placeholders is the number of diagram placeholders in HTML. The
	// orchestrator waits for this many rendered diagrams.
	Placeholders int
}

// Assembler composes documents from the document template.
type Assembler struct {
	tmpl      *template.Template
	themeCSS  string
	layoutCSS string
}

type documentData struct {
	Title         string
	MathCSS       template.CSS
	ThemeCSS      template.CSS
	LayoutCSS     template.CSS
	CodeCSS       template.CSS
	DiagramScript string
	DiagramConfig diagramConfig
	Body          template.HTML
}

// NewAssembler loads the theme stylesheet and document template from loader.
func NewAssembler(loader assets.AssetLoader) (*Assembler, error) {
	theme, err := loader.LoadStyle(assets.DefaultStyle)
	if err != nil {
		return nil, fmt.Errorf("%w: loading theme: %v", ErrAssembly, err)
	}
	tmplText, err := loader.LoadTemplate(assets.DefaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: loading template: %v", ErrAssembly, err)
	}
	tmpl, err := template.New(assets.DefaultTemplate).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing template: %v", ErrAssembly, err)
	}
	return &Assembler{tmpl: tmpl, themeCSS: theme, layoutCSS: buildPrintLayoutCSS()}, nil
}

// Assemble builds the document for frag and counts its diagram placeholders.
func (a *Assembler) Assemble(frag Fragment, in AssembleInput) (*Document, error) {
	data := documentData{
		Title:         in.Title,
		MathCSS:       template.CSS(sanitizeCSS(in.MathCSS)), // #nosec G203 -- stylesheet from the local KaTeX distribution
		ThemeCSS:      template.CSS(sanitizeCSS(a.themeCSS)), // #nosec G203 -- embedded or user theme
		LayoutCSS:     template.CSS(a.layoutCSS),             // #nosec G203 -- generated constant
		CodeCSS:       template.CSS(sanitizeCSS(in.CodeCSS)), // #nosec G203 -- generated by chroma
		DiagramScript: DiagramRuntimeURL,
		DiagramConfig: defaultDiagramConfig,
		Body:          template.HTML(frag.HTML), // #nosec G203 -- rendered from the user's own document
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	out := buf.String()
	n, err := CountPlaceholders(out)
	if err != nil {
		return nil, err
	}
	return &Document{HTML: out, Title: in.Title, Placeholders: n}, nil
}

// CountPlaceholders returns the number of diagram placeholders in an HTML
// document, using the selector the orchestrator queries in the browser.
func CountPlaceholders(doc string) (int, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return 0, fmt.Errorf("%w: parsing assembled document: %v", ErrAssembly, err)
	}
	return d.Find(render.PlaceholderSelector).Length(), nil
}

// sanitizeCSS escapes sequences that could close the enclosing <style>.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// buildPrintLayoutCSS generates the page and pagination rules. The margins
// repeat the capture geometry so print preview and capture agree.
func buildPrintLayoutCSS() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, `
/* Page geometry */
@page {
  size: A4;
  margin: %gcm %gcm;
}
`, render.MarginVerticalCM, render.MarginSideCM)

	buf.WriteString(`
/* Keep headings with the content that follows */
h1, h2, h3, h4, h5, h6 {
  break-after: avoid;
  page-break-after: avoid;
}

/* Blocks that should not split across pages */
pre, table, blockquote, .mermaid, .katex-block {
  break-inside: avoid;
  page-break-inside: avoid;
}

@media print {
  .mermaid[data-processed="true"] {
    display: block;
  }
}
`)
	return buf.String()
}
