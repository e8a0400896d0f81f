package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

// builtin holds the print theme and the render document template shipped
// with the binary.
//
//go:embed styles/*.css templates/*.html
var builtin embed.FS

// EmbeddedLoader serves the built-in theme and template.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the compiled-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

// LoadStyle returns styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(name, "styles", ".css", ErrStyleNotFound)
}

// LoadTemplate returns templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(name, "templates", ".html", ErrTemplateNotFound)
}

func (e *EmbeddedLoader) load(name, dir, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := fs.ReadFile(e.fsys, path.Join(dir, name+ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q (built-in)", notFound, name)
	}
	return string(content), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
