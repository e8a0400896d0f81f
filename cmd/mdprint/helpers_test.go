package main

// Notes:
// - Shared fakes for command tests. fakeConverter records every Input it
//   receives and answers with a canned result or error; it never starts a
//   browser or reads KaTeX.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	mdprint "github.com/alnah/go-mdprint"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type fakeConverter struct {
	mu     sync.Mutex
	result *mdprint.Result
	err    error
	inputs []mdprint.Input

	// block, when set, holds Convert until the context is done.
	block bool
}

func (f *fakeConverter) Convert(ctx context.Context, in mdprint.Input) (*mdprint.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(in.Markdown) == "" {
		return nil, mdprint.ErrEmptyMarkdown
	}

	res := *f.result
	if res.OutputPath == "" {
		res.OutputPath = in.OutputPath
	}
	return &res, nil
}

func (f *fakeConverter) KaTeXDir() string { return "/fake/katex/dist" }

func (f *fakeConverter) lastInput(t *testing.T) mdprint.Input {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("converter was never called")
	}
	return f.inputs[len(f.inputs)-1]
}

func pdfResult() *mdprint.Result {
	return &mdprint.Result{
		Title:    "Doc",
		Diagrams: 2,
		Pages:    3,
		Size:     2048,
		PDF:      bytes.Repeat([]byte("%"), 2048),
	}
}

// testEnv returns an environment writing to buffers and building conv.
// newErr, when set, fails converter construction.
func testEnv(conv *fakeConverter, newErr error) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Stdout: stdout,
		Stderr: stderr,
		NewConverter: func(...mdprint.Option) (Converter, error) {
			if newErr != nil {
				return nil, newErr
			}
			return conv, nil
		},
	}
	return env, stdout, stderr
}

// writeMarkdown writes a Markdown file into a temp dir and returns its path.
func writeMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
