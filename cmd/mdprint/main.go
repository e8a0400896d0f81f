package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the subcommands runMain dispatches.
var commands = []string{"convert", "serve", "doctor", "version", "help"}

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// args includes the program name.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitFailure
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		// "mdprint doc.md" is shorthand for "mdprint convert doc.md".
		if looksLikeMarkdown(cmd) {
			cmd, rest = "convert", args[1:]
		} else {
			fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
			printUsage(env.Stderr)
			return ExitFailure
		}
	}

	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "go-mdprint %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "serve":
		return reportError(env.Stderr, runServe(ctx, rest, env))
	default:
		return reportError(env.Stderr, runConvert(ctx, rest, env))
	}
}

// reportError prints err with any matching hint and maps it to an exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, errHelpShown) {
		return ExitSuccess
	}
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

func isCommand(s string) bool {
	for _, c := range commands {
		if s == c {
			return true
		}
	}
	return false
}

// looksLikeMarkdown reports whether s names a Markdown file.
func looksLikeMarkdown(s string) bool {
	ext := filepath.Ext(s)
	return ext == ".md" || ext == ".markdown"
}

// hasVerboseFlag scans raw arguments before flag parsing.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
