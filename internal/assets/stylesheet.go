package assets

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// urlRefPattern matches CSS url() references, quoted or not. Group 1 is the
// quote (possibly empty) and group 2 the reference.
var urlRefPattern = regexp.MustCompile(`url\(\s*(['"]?)([^'")]*?)(['"]?)\s*\)`)

// StyleBundle is a stylesheet read from disk together with the directory its
// relative references resolve against.
type StyleBundle struct {
	Dir        string   // absolute directory of the stylesheet
	Raw        string   // unmodified content
	References []string // every url() target, in order of appearance
}

// LoadStyleBundle reads the stylesheet at path.
func LoadStyleBundle(path string) (*StyleBundle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetResolution, err)
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- path comes from LocateKaTeX or the caller
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetResolution, abs, err)
	}
	return NewStyleBundle(filepath.Dir(abs), string(data)), nil
}

// NewStyleBundle wraps in-memory CSS whose relative references resolve
// against dir.
func NewStyleBundle(dir, css string) *StyleBundle {
	b := &StyleBundle{Dir: dir, Raw: css}
	for _, m := range urlRefPattern.FindAllStringSubmatch(css, -1) {
		b.References = append(b.References, m[2])
	}
	return b
}

// Rewrite returns the stylesheet with every relative url() reference
// replaced by an absolute, quoted file:// URL. Absolute paths, URLs with a
// scheme, protocol-relative URLs and fragment references are kept verbatim,
// so rewriting an already rewritten stylesheet changes nothing.
func (b *StyleBundle) Rewrite() string {
	return urlRefPattern.ReplaceAllStringFunc(b.Raw, func(match string) string {
		m := urlRefPattern.FindStringSubmatch(match)
		open, ref, closing := m[1], strings.TrimSpace(m[2]), m[3]
		if open != closing || !isRelativeRef(ref) {
			return match
		}
		return `url("` + fileURL(filepath.Join(b.Dir, filepath.FromSlash(stripQuery(ref)))) + querySuffix(ref) + `")`
	})
}

func isRelativeRef(ref string) bool {
	switch {
	case ref == "":
		return false
	case strings.HasPrefix(ref, "#"), strings.HasPrefix(ref, "/"), strings.HasPrefix(ref, `\`):
		return false
	case filepath.IsAbs(ref):
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// stripQuery drops the ?query and #fragment of a font reference such as
// "fonts/x.eot?#iefix".
func stripQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

func querySuffix(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[i:]
	}
	return ""
}

// fileURL converts an absolute filesystem path to a file:// URL.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// FileURL converts a filesystem path to an absolute file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return fileURL(abs), nil
}
