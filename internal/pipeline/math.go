package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Typesetter renders TeX to HTML. Implementations should render TeX syntax
// errors as visible markup themselves; a returned error is replaced by an
// error span for that one expression.
type Typesetter interface {
	Typeset(ctx context.Context, tex string, display bool) (string, error)
}

// mathErrorColor matches the color the typesetter uses for its own error
// markup.
const mathErrorColor = "#cc0000"

var (
	// KindMathInline is the node kind of $...$ and $$...$$ within a line.
	KindMathInline = ast.NewNodeKind("MathInline")
	// KindMathBlock is the node kind of a $$ delimited block.
	KindMathBlock = ast.NewNodeKind("MathBlock")
)

// renderContextKey carries the context.Context of a Render call into the
// typesetting transformer.
var renderContextKey = parser.NewContextKey()

// MathInline is a math span inside a paragraph.
type MathInline struct {
	ast.BaseInline
	TeX     string
	Display bool
	HTML    string // typeset output
}

func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"TeX": n.TeX}, nil)
}

// MathBlock is a display math block delimited by $$ lines.
type MathBlock struct {
	ast.BaseBlock
	HTML   string // typeset output
	closed bool   // opening line also closed the block
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// TeX returns the block content with surrounding whitespace removed.
func (n *MathBlock) TeX(source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimSpace(buf.String())
}

var mathDelim = []byte("$$")

// mathBlockParser opens on a line starting with $$. The content may start
// on the opening line, and the block ends on the first line ending with $$.
type mathBlockParser struct{}

func (mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (mathBlockParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], mathDelim) {
		return nil, parser.NoChildren
	}

	node := &MathBlock{}
	rest := util.TrimRightSpace(line[pos+2:])
	start := segment.Start + pos + 2
	if len(rest) >= 2 && bytes.HasSuffix(rest, mathDelim) {
		node.Lines().Append(text.NewSegment(start, start+len(rest)-2))
		node.closed = true
	} else if !util.IsBlank(rest) {
		node.Lines().Append(text.NewSegment(start, start+len(rest)))
	}
	return node, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	if node.(*MathBlock).closed {
		return parser.Close
	}

	line, segment := reader.PeekLine()
	trimmed := util.TrimRightSpace(line)
	if bytes.HasSuffix(trimmed, mathDelim) {
		if content := trimmed[:len(trimmed)-2]; !util.IsBlank(content) {
			node.Lines().Append(text.NewSegment(segment.Start, segment.Start+len(content)))
		}
		reader.Advance(segment.Stop - segment.Start - segment.Padding)
		return parser.Close
	}

	node.Lines().Append(segment)
	reader.AdvanceAndSetPadding(segment.Stop-segment.Start-1, segment.Padding)
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(ast.Node, text.Reader, parser.Context) {}

func (mathBlockParser) CanInterruptParagraph() bool { return true }

func (mathBlockParser) CanAcceptIndentedLine() bool { return false }

// mathInlineParser recognizes $tex$ and $$tex$$ within one line. An opening
// $ must not be followed by whitespace; a closing $ must not follow
// whitespace nor precede a digit, so "$5 and $10" stays text.
type mathInlineParser struct{}

func (mathInlineParser) Trigger() []byte { return []byte{'$'} }

func (mathInlineParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 2 {
		return nil
	}

	if line[1] == '$' {
		end := indexUnescaped(line[2:], mathDelim)
		if end <= 0 {
			// "$$" without content is literal text; consuming both
			// characters keeps the second from opening a span.
			block.Advance(2)
			return ast.NewTextSegment(segment.WithStop(segment.Start + 2))
		}
		node := &MathInline{TeX: string(line[2 : 2+end]), Display: true}
		block.Advance(2 + end + 2)
		return node
	}

	if util.IsSpace(line[1]) {
		return nil
	}
	end := indexUnescaped(line[1:], []byte{'$'})
	if end < 0 {
		return nil
	}
	closing := 1 + end
	if util.IsSpace(line[closing-1]) {
		return nil
	}
	if closing+1 < len(line) && line[closing+1] >= '0' && line[closing+1] <= '9' {
		return nil
	}

	node := &MathInline{TeX: string(line[1:closing])}
	block.Advance(closing + 1)
	return node
}

// indexUnescaped returns the index of the first delim in b not preceded by
// an odd number of backslashes, or -1.
func indexUnescaped(b, delim []byte) int {
	for from := 0; from < len(b); {
		i := bytes.Index(b[from:], delim)
		if i < 0 {
			return -1
		}
		pos := from + i
		backslashes := 0
		for j := pos - 1; j >= 0 && b[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return pos
		}
		from = pos + 1
	}
	return -1
}

// mathTransformer typesets every math node once parsing is complete.
type mathTransformer struct {
	ts     Typesetter
	logger *slog.Logger
}

func (t *mathTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	ctx, _ := pc.Get(renderContextKey).(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}
	source := reader.Source()

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch m := n.(type) {
		case *MathInline:
			m.HTML = t.typeset(ctx, m.TeX, m.Display)
		case *MathBlock:
			m.HTML = t.typeset(ctx, m.TeX(source), true)
		}
		return ast.WalkContinue, nil
	})
}

func (t *mathTransformer) typeset(ctx context.Context, tex string, display bool) string {
	if t.ts == nil {
		return mathErrorSpan(tex, "no math typesetter configured")
	}
	out, err := t.ts.Typeset(ctx, tex, display)
	if err != nil {
		t.logger.Warn("math expression not typeset", "tex", tex, "error", err)
		return mathErrorSpan(tex, err.Error())
	}
	return out
}

// mathErrorSpan marks an expression that could not be typeset, keeping its
// source visible.
func mathErrorSpan(tex, reason string) string {
	return `<span class="katex-error" title="` + EscapeHTML(reason) +
		`" style="color:` + mathErrorColor + `">` + EscapeHTML(tex) + `</span>`
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathInline, renderMathInline)
	reg.Register(KindMathBlock, renderMathBlock)
}

func renderMathInline(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(n.(*MathInline).HTML)
	}
	return ast.WalkSkipChildren, nil
}

func renderMathBlock(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<p class="katex-block">`)
		_, _ = w.WriteString(n.(*MathBlock).HTML)
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkSkipChildren, nil
}

// mathExtension wires the math parsers, the typesetting pass and the
// renderer into a goldmark instance.
type mathExtension struct {
	ts     Typesetter
	logger *slog.Logger
}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(mathBlockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(mathInlineParser{}, 501)),
		parser.WithASTTransformers(util.Prioritized(&mathTransformer{ts: e.ts, logger: e.logger}, 100)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(mathRenderer{}, 500)))
}
