package pipeline

import (
	"strings"
	"testing"
)

func TestHighlighter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lang     string
		code     string
		contains []string
	}{
		{
			name:     "known language",
			lang:     "go",
			code:     "func main() {}\n",
			contains: []string{`<pre class="chroma"><code class="language-go">`, `class="kd"`, "</code></pre>\n"},
		},
		{
			name:     "markup escaped",
			lang:     "html",
			code:     "<a href='x'>&</a>\n",
			contains: []string{"&lt;", "&gt;", "&amp;"},
		},
		{
			name:     "unknown language falls back",
			lang:     "nosuchlang",
			code:     "<x>\n",
			contains: []string{`class="language-nosuchlang"`, "&lt;x&gt;"},
		},
		{
			name:     "tag escaped in class",
			lang:     `x"y`,
			code:     "a\n",
			contains: []string{`class="language-x&quot;y"`},
		},
	}

	h := NewHighlighter("github")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf strings.Builder
			if err := h.Highlight(&buf, tt.lang, tt.code); err != nil {
				t.Fatalf("Highlight() error = %v", err)
			}
			got := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Highlight() missing %q in\n%s", want, got)
				}
			}
		})
	}
}

func TestHighlighter_Style(t *testing.T) {
	t.Parallel()

	if got := NewHighlighter("").StyleName(); got != DefaultHighlightStyle {
		t.Errorf("StyleName() = %q, want %q", got, DefaultHighlightStyle)
	}
	if got := NewHighlighter("monokai").StyleName(); got != "monokai" {
		t.Errorf("StyleName() = %q, want monokai", got)
	}
	if got := NewHighlighter("no-such-style").StyleName(); got == "" {
		t.Error("unknown style should fall back to a named style")
	}

	css, err := NewHighlighter("github").CSS()
	if err != nil {
		t.Fatalf("CSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("CSS() missing .chroma rules:\n%s", css)
	}
}
