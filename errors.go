package mdprint

import (
	"errors"

	"github.com/alnah/go-mdprint/internal/assets"
	"github.com/alnah/go-mdprint/internal/fileutil"
	"github.com/alnah/go-mdprint/internal/pipeline"
	"github.com/alnah/go-mdprint/internal/render"
)

// Sentinel errors for library operations.
var (
	ErrInputNotFound   = errors.New("input file not found")
	ErrNoOutputPath    = errors.New("output path is required")
	ErrBrowserLaunch   = errors.New("failed to launch browser")
	ErrWriteTransient  = fileutil.ErrTransientWrite
	ErrAssetResolution = assets.ErrAssetResolution

	// Markup and assembly errors.
	ErrEmptyMarkdown  = pipeline.ErrEmptyMarkdown
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrAssembly       = pipeline.ErrAssembly

	// Render lifecycle errors.
	ErrNavigationTimeout        = render.ErrNavigationTimeout
	ErrNavigation               = render.ErrNavigation
	ErrPageEval                 = render.ErrPageEval
	ErrDiagramRenderTimeout     = render.ErrDiagramRenderTimeout
	ErrPlaceholderCountMismatch = render.ErrPlaceholderCountMismatch
	ErrCaptureFailure           = render.ErrCaptureFailure
	ErrInvalidRenderConfig      = render.ErrInvalidConfig
)
