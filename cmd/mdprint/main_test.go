package main

// Notes:
// - runMain: we test dispatch and exit codes with a fake converter. Actual
//   conversion is covered by the library tests and the integration suite.
// - isCommand / looksLikeMarkdown / hasVerboseFlag: argument classification.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Main entry point exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	input := writeMarkdown(t, "doc.md", "# Doc\n")

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage and exits with ExitFailure",
			args:         []string{"mdprint"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"Usage: mdprint"},
		},
		{
			name:         "version command exits 0",
			args:         []string{"mdprint", "version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"go-mdprint " + Version},
		},
		{
			name:         "help command exits 0",
			args:         []string{"mdprint", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: mdprint", "Commands:", "serve", "doctor"},
		},
		{
			name:         "help convert shows convert help",
			args:         []string{"mdprint", "help", "convert"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: mdprint convert", "--diagram-timeout", "--keep-html", "otherwise always deleted"},
		},
		{
			name:         "help serve shows endpoints",
			args:         []string{"mdprint", "help", "serve"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"POST /convert", "X-Page-Count"},
		},
		{
			name:         "help unknown command",
			args:         []string{"mdprint", "help", "frobnicate"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"Unknown command: frobnicate"},
		},
		{
			name:         "unknown command",
			args:         []string{"mdprint", "frobnicate"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"Unknown command: frobnicate", "Usage: mdprint"},
		},
		{
			name:         "convert without input",
			args:         []string{"mdprint", "convert"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"error:", "needs an input file"},
		},
		{
			name:         "convert missing input file",
			args:         []string{"mdprint", "convert", "/nonexistent/doc.md"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"error: input file not found"},
		},
		{
			name:         "convert unknown flag",
			args:         []string{"mdprint", "convert", "--bogus", input},
			wantCode:     ExitFailure,
			wantInStderr: []string{"unknown flag: --bogus"},
		},
		{
			name:         "convert help flag",
			args:         []string{"mdprint", "convert", "--help"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Usage: mdprint convert"},
		},
		{
			name:         "convert succeeds",
			args:         []string{"mdprint", "convert", input},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Created ", "doc.pdf", "3 pages"},
		},
		{
			name:         "markdown shorthand runs convert",
			args:         []string{"mdprint", input, "--quiet"},
			wantCode:     ExitSuccess,
		},
		{
			name:         "serve with arguments",
			args:         []string{"mdprint", "serve", "extra"},
			wantCode:     ExitFailure,
			wantInStderr: []string{"serve takes no arguments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(&fakeConverter{result: pdfResult()}, nil)
			code := runMain(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstdout: %s\nstderr: %s", code, tt.wantCode, stdout, stderr)
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout)
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command name detection
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"convert", true},
		{"serve", true},
		{"doctor", true},
		{"version", true},
		{"help", true},
		{"foo", false},
		{"", false},
		{"doc.md", false},
		{"Convert", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLooksLikeMarkdown - Markdown file extension detection
// ---------------------------------------------------------------------------

func TestLooksLikeMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"doc.md", true},
		{"doc.markdown", true},
		{"/path/to/doc.md", true},
		{"doc.txt", false},
		{"doc", false},
		{"", false},
		{"md.pdf", false},
		{"file.MD", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := looksLikeMarkdown(tt.input); got != tt.want {
				t.Errorf("looksLikeMarkdown(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - Pre-parse verbose detection
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"convert", "-v", "doc.md"}, true},
		{[]string{"serve", "--verbose"}, true},
		{[]string{"convert", "doc.md"}, false},
		{[]string{"convert", "--verbose=false"}, false},
	}

	for _, tt := range tests {
		if got := hasVerboseFlag(tt.args); got != tt.want {
			t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
