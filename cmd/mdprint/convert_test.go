package main

// Notes:
// - runConvert: we test argument handling, the Input handed to the converter,
//   the success line, and error reporting through runMain with a fake
//   converter.
// - resolvePaths / formatSize / resolveTimeout / mergeFlags / newLogger: pure
//   helpers tested directly.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdprint "github.com/alnah/go-mdprint"
	"github.com/alnah/go-mdprint/internal/assets"
	"github.com/alnah/go-mdprint/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunConvert - Input handed to the converter
// ---------------------------------------------------------------------------

func TestRunConvert_Input(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "report.md", "# Report\n\n$x$\n")
	output := filepath.Join(t.TempDir(), "out.pdf")
	conv := &fakeConverter{result: pdfResult()}
	env, stdout, _ := testEnv(conv, nil)

	err := runConvert(context.Background(), []string{input, output, "--title", "Override"}, env)
	if err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}

	in := conv.lastInput(t)
	if in.OutputPath != output {
		t.Errorf("OutputPath = %q, want %q", in.OutputPath, output)
	}
	if in.Title != "Override" || in.Filename != "report.md" || in.HTMLOnly {
		t.Errorf("Input = %+v", in)
	}
	if abs, _ := filepath.Abs(filepath.Dir(input)); in.SourceDir != abs {
		t.Errorf("SourceDir = %q, want %q", in.SourceDir, abs)
	}
	want := fmt.Sprintf("Created %s (2.0 KiB, 3 pages)\n", output)
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunConvert_HTMLOnly(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "notes.md", "# Notes\n")
	html := strings.TrimSuffix(input, ".md") + ".html"
	conv := &fakeConverter{result: &mdprint.Result{OutputPath: html}}
	env, stdout, _ := testEnv(conv, nil)

	if err := runConvert(context.Background(), []string{"--html-only", input}, env); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}
	if !conv.lastInput(t).HTMLOnly {
		t.Error("HTMLOnly not passed to the converter")
	}
	if stdout.String() != "Created "+html+"\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunConvert_Quiet(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "q.md", "# Q\n")
	env, stdout, _ := testEnv(&fakeConverter{result: pdfResult()}, nil)

	if err := runConvert(context.Background(), []string{"-q", input}, env); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run printed %q", stdout.String())
	}
}

func TestRunConvert_Verbose(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "v.md", "# V\n")
	env, stdout, stderr := testEnv(&fakeConverter{result: pdfResult()}, nil)

	if err := runConvert(context.Background(), []string{"-v", input}, env); err != nil {
		t.Fatalf("runConvert() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "2 diagrams") {
		t.Errorf("verbose line missing diagram count: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "converter ready") {
		t.Errorf("debug log missing: %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Errors - Exit codes and hints
// ---------------------------------------------------------------------------

func TestRunConvert_Errors(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "doc.md", "# Doc\n")

	tests := []struct {
		name       string
		args       []string
		convErr    error
		newErr     error
		wantCode   int
		wantStderr []string
	}{
		{
			name:       "diagram timeout",
			args:       []string{input},
			convErr:    fmt.Errorf("%w: 1 of 2 diagrams rendered", mdprint.ErrDiagramRenderTimeout),
			wantCode:   ExitFailure,
			wantStderr: []string{"error: ", "hint:", "--diagram-timeout"},
		},
		{
			name:       "capture failure",
			args:       []string{input},
			convErr:    fmt.Errorf("%w: boom", mdprint.ErrCaptureFailure),
			wantCode:   ExitFailure,
			wantStderr: []string{"error: "},
		},
		{
			name:       "katex missing",
			args:       []string{input},
			newErr:     &assets.LocationError{Searched: []string{"/a", "/b"}},
			wantCode:   ExitFailure,
			wantStderr: []string{"npm install katex", "/a, /b"},
		},
		{
			name:       "conflicting output",
			args:       []string{input, "a.pdf", "-o", "b.pdf"},
			wantCode:   ExitFailure,
			wantStderr: []string{"--output"},
		},
		{
			name:       "too many arguments",
			args:       []string{input, "a.pdf", "extra"},
			wantCode:   ExitFailure,
			wantStderr: []string{"too many arguments"},
		},
		{
			name:       "bad diagram timeout",
			args:       []string{input, "--diagram-timeout", "soon"},
			wantCode:   ExitFailure,
			wantStderr: []string{"render.diagramTimeout"},
		},
		{
			name:       "zero overall timeout",
			args:       []string{input, "--timeout", "0s"},
			wantCode:   ExitFailure,
			wantStderr: []string{"must be positive"},
		},
		{
			name:       "missing config",
			args:       []string{input, "--config", "/nonexistent/cfg.yaml"},
			wantCode:   ExitFailure,
			wantStderr: []string{"config file not found", "hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := &fakeConverter{result: pdfResult(), err: tt.convErr}
			env, stdout, stderr := testEnv(conv, tt.newErr)

			code := runMain(context.Background(), append([]string{"mdprint", "convert"}, tt.args...), env)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, stderr)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want empty on failure", stdout)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolvePaths - Positional and flag output
// ---------------------------------------------------------------------------

func TestResolvePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		positional []string
		flagOutput string
		wantIn     string
		wantOut    string
		wantErr    bool
	}{
		{"input only", []string{"a.md"}, "", "a.md", "", false},
		{"flag output", []string{"a.md"}, "x.pdf", "a.md", "x.pdf", false},
		{"positional output", []string{"a.md", "y.pdf"}, "", "a.md", "y.pdf", false},
		{"same in both", []string{"a.md", "y.pdf"}, "y.pdf", "a.md", "y.pdf", false},
		{"disagreeing", []string{"a.md", "y.pdf"}, "x.pdf", "", "", true},
		{"none", nil, "", "", "", true},
		{"too many", []string{"a", "b", "c"}, "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, out, err := resolvePaths(tt.positional, tt.flagOutput)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Errorf("error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil || in != tt.wantIn || out != tt.wantOut {
				t.Errorf("resolvePaths() = %q, %q, %v; want %q, %q", in, out, err, tt.wantIn, tt.wantOut)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormatSize - Byte count rendering
// ---------------------------------------------------------------------------

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPrintResult_SinglePage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printResult(&buf, &mdprint.Result{OutputPath: "a.pdf", Size: 10, Pages: 1, PDF: []byte("x")}, false, 0)
	if buf.String() != "Created a.pdf (10 B, 1 page)\n" {
		t.Errorf("printResult() = %q", buf.String())
	}

	buf.Reset()
	printResult(&buf, &mdprint.Result{OutputPath: "b.pdf", Size: 10, PDF: []byte("x"), HTMLPath: "b.tmp.render.html"}, false, 0)
	if buf.String() != "Created b.pdf (10 B)\nKept b.tmp.render.html\n" {
		t.Errorf("printResult() without page count = %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestResolveTimeout - Overall timeout resolution
// ---------------------------------------------------------------------------

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flagValue string
		envValue  time.Duration
		want      time.Duration
		errSubstr string
	}{
		{name: "none", want: 0},
		{name: "flag only", flagValue: "2m", want: 2 * time.Minute},
		{name: "env only", envValue: 45 * time.Second, want: 45 * time.Second},
		{name: "flag overrides env", flagValue: "5m", envValue: time.Minute, want: 5 * time.Minute},
		{name: "invalid flag", flagValue: "abc", errSubstr: "invalid timeout"},
		{name: "negative", flagValue: "-5s", errSubstr: "must be positive"},
		{name: "zero flag overrides valid env", flagValue: "0s", envValue: time.Minute, errSubstr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveTimeout(tt.flagValue, tt.envValue)
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("error = %v, want containing %q", err, tt.errSubstr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("resolveTimeout() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI flags override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Math.KaTeXDir = "/from/config"
	cfg.Render.DiagramTimeout = "10s"

	mergeFlags(
		renderFlags{diagramTimeout: "45s", settleDelay: "0s"},
		converterFlags{katexDir: "/from/flag", style: "monokai", noSandbox: true, keepHTML: true},
		cfg,
	)

	if cfg.Math.KaTeXDir != "/from/flag" {
		t.Errorf("KaTeXDir = %q", cfg.Math.KaTeXDir)
	}
	if cfg.Render.DiagramTimeout != "45s" || cfg.Render.SettleDelay != "0s" {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Render.NavigationTimeout != config.DefaultConfig().Render.NavigationTimeout {
		t.Errorf("unset flag changed NavigationTimeout to %q", cfg.Render.NavigationTimeout)
	}
	if !cfg.Code.Highlight || cfg.Code.Style != "monokai" {
		t.Errorf("Code = %+v, want highlighting with monokai", cfg.Code)
	}
	if !cfg.Browser.NoSandbox || !cfg.Output.KeepHTML {
		t.Errorf("Browser = %+v, Output = %+v", cfg.Browser, cfg.Output)
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Level selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		common commonFlags
		want   slog.Level
	}{
		{"default", commonFlags{}, slog.LevelInfo},
		{"verbose", commonFlags{verbose: true}, slog.LevelDebug},
		{"quiet", commonFlags{quiet: true}, slog.LevelError},
		{"quiet wins", commonFlags{quiet: true, verbose: true}, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := newLogger(&bytes.Buffer{}, tt.common)
			ctx := context.Background()
			if !logger.Enabled(ctx, tt.want) {
				t.Errorf("level %v disabled", tt.want)
			}
			if logger.Enabled(ctx, tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}
