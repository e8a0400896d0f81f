// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath      = errors.New("path cannot be empty")
	ErrTransientWrite = errors.New("failed to write transient document")
)

// transientSuffix is appended to the output stem to name the render document.
const transientSuffix = ".tmp.render.html"

// pdfExtension is the extension of captured artifacts.
const pdfExtension = ".pdf"

// transientPermissions keeps the render document private to the owner.
const transientPermissions = 0o600

// DefaultOutputPath derives the output path from the input path by replacing
// its extension with .pdf. A path without extension gets .pdf appended.
//
// Examples:
//   - "notes.md" -> "notes.pdf"
//   - "dir/report.markdown" -> "dir/report.pdf"
//   - "README" -> "README.pdf"
func DefaultOutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + pdfExtension
}

// TransientPath returns the location of the render document written next to
// the output. A trailing .pdf (any case) is replaced, anything else is kept.
func TransientPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	if strings.EqualFold(ext, pdfExtension) {
		return strings.TrimSuffix(outputPath, ext) + transientSuffix
	}
	return outputPath + transientSuffix
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteTransient writes content to path and returns a cleanup function that
// removes it. Cleanup is safe to call more than once.
func WriteTransient(path, content string) (cleanup func(), err error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	// #nosec G306 -- owner-only permissions below
	if err := os.WriteFile(path, []byte(content), transientPermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransientWrite, err)
	}

	cleanup = func() { _ = os.Remove(path) }
	return cleanup, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsURL returns true if the string looks like a remote URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
