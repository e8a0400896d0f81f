package pipeline

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// FenceKind classifies a fenced code block by its language tag.
type FenceKind int

const (
	// FenceGenericCode is escaped and printed as code. Unknown and empty
	// tags fall here.
	FenceGenericCode FenceKind = iota
	// FenceDiagram is passed through raw for the in-browser diagram runtime.
	FenceDiagram
)

// DiagramLanguage is the fence tag rendered by the diagram runtime.
const DiagramLanguage = "mermaid"

func (k FenceKind) String() string {
	if k == FenceDiagram {
		return "diagram"
	}
	return "code"
}

// ClassifyFence maps a fence language tag to its kind.
func ClassifyFence(lang string) FenceKind {
	if strings.EqualFold(strings.TrimSpace(lang), DiagramLanguage) {
		return FenceDiagram
	}
	return FenceGenericCode
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces & < > " ' with entities in a single pass, so an
// entity produced for one character is never escaped again.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// fenceRenderer replaces goldmark's fenced code block renderer.
type fenceRenderer struct {
	hl *Highlighter // nil disables highlighting
}

func (r *fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFence)
}

func (r *fenceRenderer) renderFence(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	code := fenceContent(n, source)

	switch ClassifyFence(lang) {
	case FenceDiagram:
		_, _ = w.WriteString(`<div class="mermaid">`)
		_, _ = w.WriteString(code)
		_, _ = w.WriteString("</div>\n")
	default:
		if lang == "" {
			lang = "text"
		}
		if r.hl != nil {
			if err := r.hl.Highlight(w, lang, code); err != nil {
				return ast.WalkStop, err
			}
			return ast.WalkSkipChildren, nil
		}
		_, _ = w.WriteString(`<pre><code class="language-` + EscapeHTML(lang) + `">`)
		_, _ = w.WriteString(EscapeHTML(code))
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

// fenceContent returns the fence body exactly as written, trailing newline
// included.
func fenceContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// countDiagrams returns the number of diagram fences in a parsed document.
func countDiagrams(doc ast.Node, source []byte) int {
	count := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fc, ok := n.(*ast.FencedCodeBlock); ok && ClassifyFence(string(fc.Language(source))) == FenceDiagram {
			count++
		}
		return ast.WalkContinue, nil
	})
	return count
}
