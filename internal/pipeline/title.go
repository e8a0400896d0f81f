package pipeline

import (
	"strings"

	"github.com/alnah/go-mdprint/internal/fileutil"
)

// UntitledDocument is the title used when neither a heading nor a filename
// is available.
const UntitledDocument = "Untitled"

// ExtractTitle returns the text of the first level-one ATX heading ("# ...")
// outside fenced code, or the filename without its extension.
func ExtractTitle(md, filename string) string {
	var fence string // opening fence run while inside fenced code
	for line := range strings.Lines(md) {
		line = strings.TrimRight(line, "\r\n")
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}

		if run := fenceRun(trimmed); run != "" {
			switch {
			case fence == "":
				fence = run
			case run[0] == fence[0] && len(run) >= len(fence) && strings.TrimSpace(trimmed[len(run):]) == "":
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		if title, ok := headingText(trimmed); ok {
			return title
		}
	}

	if stem := fileutil.Stem(filename); stem != "" {
		return stem
	}
	return UntitledDocument
}

// fenceRun returns the leading run of ``` or ~~~ (3 or more) in line.
func fenceRun(line string) string {
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return line[:n]
}

// headingText parses "# text" with an optional closing run of '#'.
func headingText(line string) (string, bool) {
	if len(line) < 2 || line[0] != '#' || (line[1] != ' ' && line[1] != '\t') {
		return "", false
	}
	text := strings.TrimSpace(line[1:])
	if stripped := strings.TrimRight(text, "#"); stripped != text {
		// A closing sequence needs a space before it; "# C#" keeps its hash.
		if stripped == "" || strings.HasSuffix(stripped, " ") || strings.HasSuffix(stripped, "\t") {
			text = strings.TrimSpace(stripped)
		}
	}
	if text == "" {
		return "", false
	}
	return text, true
}
