package pipeline

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteImagePaths converts relative img[src] values in an HTML fragment to
// absolute file:// URLs rooted at sourceDir, so images resolve from the
// transient document wherever it is written. Every other byte of the
// fragment, diagram sources included, is copied through unchanged. An empty
// sourceDir returns the fragment as is.
//
// Not rewritten:
//   - URLs with a scheme, protocol-relative URLs, fragments, absolute paths
//   - paths that would escape sourceDir
//   - srcset, links, media elements
func RewriteImagePaths(fragment, sourceDir string) (string, error) {
	if sourceDir == "" || !strings.Contains(fragment, "<img") {
		return fragment, nil
	}
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	out.Grow(len(fragment))

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return out.String(), nil
			}
			return "", z.Err()
		}

		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		tok := z.Token()
		if tok.DataAtom != atom.Img || !rewriteImageSrc(&tok, absSourceDir) {
			out.Write(raw)
			continue
		}
		out.WriteString(tok.String())
	}
}

// rewriteImageSrc rewrites the src attribute of tok in place and reports
// whether anything changed.
func rewriteImageSrc(tok *html.Token, sourceDir string) bool {
	for i, attr := range tok.Attr {
		if attr.Key != "src" || !isRelativePath(attr.Val) {
			continue
		}
		ref, err := url.PathUnescape(attr.Val)
		if err != nil {
			ref = attr.Val
		}
		absPath := filepath.Join(sourceDir, filepath.FromSlash(ref))
		if !isPathUnderDir(absPath, sourceDir) {
			return false
		}
		tok.Attr[i].Val = pathToFileURL(absPath)
		return true
	}
	return false
}

// isRelativePath reports whether path should be resolved against the
// source directory.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		return false
	}
	return true
}

// isPathUnderDir reports whether absPath is dir or inside it.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
