package pipeline

import "strings"

const utf8BOM = "\uFEFF"

// Preprocess strips a leading byte order mark and converts CRLF and lone CR
// line endings to LF. Nothing else is rewritten: diagram sources must reach
// the renderer byte for byte.
func Preprocess(md string) string {
	md = strings.TrimPrefix(md, utf8BOM)
	if !strings.Contains(md, "\r") {
		return md
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")
	return strings.ReplaceAll(md, "\r", "\n")
}
