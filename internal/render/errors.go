package render

import "errors"

// Sentinel errors for orchestration and capture.
var (
	ErrNavigationTimeout        = errors.New("navigation timeout")
	ErrNavigation               = errors.New("navigation failed")
	ErrPageEval                 = errors.New("page evaluation failed")
	ErrDiagramRenderTimeout     = errors.New("diagram render timeout")
	ErrPlaceholderCountMismatch = errors.New("diagram placeholder count mismatch")
	ErrCaptureFailure           = errors.New("capture failed")
	ErrInvalidConfig            = errors.New("invalid render config")
)
