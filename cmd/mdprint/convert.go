package main

import (
	"context"
	"fmt"
	"io"
	"time"

	mdprint "github.com/alnah/go-mdprint"
)

// runConvert converts one Markdown file: convert <input> [output].
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	inputPath, outputPath, err := resolvePaths(positional, flags.output)
	if err != nil {
		return err
	}

	// A missing input is reported before any configuration or asset lookup.
	in, err := mdprint.ReadInput(inputPath, outputPath)
	if err != nil {
		return err
	}
	in.Title = flags.title
	in.HTMLOnly = flags.htmlOnly

	s, err := loadSettings(flags.common, flags.render, flags.converter, env.Stderr)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	conv, err := env.NewConverter(converterOptions(s, logger, workingDir(), in.SourceDir)...)
	if err != nil {
		return err
	}
	logger.Debug("converter ready", "katex", conv.KaTeXDir())

	start := time.Now()
	res, err := conv.Convert(ctx, in)
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		printResult(env.Stdout, res, flags.common.verbose, time.Since(start))
	}
	return nil
}

// resolvePaths reads <input> [output]. The positional output and -o are
// interchangeable but cannot disagree.
func resolvePaths(positional []string, flagOutput string) (input, output string, err error) {
	switch len(positional) {
	case 0:
		return "", "", fmt.Errorf("%w: convert needs an input file", ErrUsage)
	case 1:
		return positional[0], flagOutput, nil
	case 2:
		if flagOutput != "" && flagOutput != positional[1] {
			return "", "", fmt.Errorf("%w: output given both as argument (%s) and --output (%s)", ErrUsage, positional[1], flagOutput)
		}
		return positional[0], positional[1], nil
	default:
		return "", "", fmt.Errorf("%w: too many arguments: %v", ErrUsage, positional[2:])
	}
}

// printResult writes the success line.
func printResult(w io.Writer, res *mdprint.Result, verbose bool, elapsed time.Duration) {
	if res.PDF == nil {
		fmt.Fprintf(w, "Created %s\n", res.OutputPath)
		return
	}

	details := formatSize(res.Size)
	if res.Pages > 0 {
		details += fmt.Sprintf(", %d %s", res.Pages, plural(res.Pages, "page", "pages"))
	}
	if verbose {
		details += fmt.Sprintf(", %d %s, %v", res.Diagrams, plural(res.Diagrams, "diagram", "diagrams"), elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Created %s (%s)\n", res.OutputPath, details)
	if res.HTMLPath != "" {
		fmt.Fprintf(w, "Kept %s\n", res.HTMLPath)
	}
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
