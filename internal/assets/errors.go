package assets

import "errors"

// ErrAssetResolution means the KaTeX distribution, or a stylesheet it
// names, could not be located or read. Conversion cannot start without it.
var ErrAssetResolution = errors.New("asset resolution failed")

// Theme and template lookup errors. A custom asset directory falls back to
// the built-in assets only on the two not-found errors.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
)

// Errors for a custom asset directory given with --asset-path.
var (
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("reading asset")
	ErrPathTraversal    = errors.New("asset path escapes asset directory")
)
