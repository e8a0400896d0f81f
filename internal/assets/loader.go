package assets

import (
	"fmt"
	"strings"
)

// Names of the built-in assets.
const (
	DefaultStyle    = "print"
	DefaultTemplate = "document"
)

// AssetLoader loads theme stylesheets and document templates by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName rejects empty names and names that could select a file
// other than {name}.css or {name}.html in the asset directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
