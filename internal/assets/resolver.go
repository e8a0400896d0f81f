package assets

import "errors"

// AssetResolver tries a custom directory first and falls back to the
// embedded assets when the custom directory lacks the requested asset.
type AssetResolver struct {
	custom   AssetLoader // nil without a custom directory
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// only the embedded assets.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

// LoadStyle loads a stylesheet, custom directory first.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate loads a document template, custom directory first.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func (r *AssetResolver) loadWithFallback(load func(AssetLoader) (string, error)) (string, error) {
	if r.custom == nil {
		return load(r.embedded)
	}
	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}
	// Validation and I/O errors are not masked by the fallback.
	if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}
	return load(r.embedded)
}

var _ AssetLoader = (*AssetResolver)(nil)
