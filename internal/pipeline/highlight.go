package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Highlighter colors generic code blocks with chroma. Tokens carry CSS
// classes; the matching stylesheet comes from CSS.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter returns a highlighter for the named chroma style. Unknown
// names fall back to chroma's default style.
func NewHighlighter(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultHighlightStyle
	}
	return &Highlighter{
		style: styles.Get(styleName),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// StyleName returns the resolved style name.
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// Highlight writes code as a highlighted <pre><code> block. Unknown
// languages are emitted as plain escaped tokens.
func (h *Highlighter) Highlight(w io.Writer, lang, code string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenising %s code: %w", lang, err)
	}

	if _, err := io.WriteString(w, `<pre class="chroma"><code class="language-`+EscapeHTML(lang)+`">`); err != nil {
		return err
	}
	if err := h.formatter.Format(w, h.style, iterator); err != nil {
		return fmt.Errorf("formatting %s code: %w", lang, err)
	}
	_, err = io.WriteString(w, "</code></pre>\n")
	return err
}

// CSS returns the stylesheet for the token classes.
func (h *Highlighter) CSS() (string, error) {
	var buf strings.Builder
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("writing highlight stylesheet: %w", err)
	}
	return buf.String(), nil
}
