package pipeline

import "errors"

// Sentinel errors for the pipeline stages.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrAssembly       = errors.New("document assembly failed")
)
