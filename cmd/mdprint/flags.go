package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// errHelpShown is returned when -h/--help printed usage; it is not a failure.
var errHelpShown = errors.New("help shown")

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds the render timing overrides as duration strings.
type renderFlags struct {
	timeout        string
	navTimeout     string
	networkIdle    string
	diagramTimeout string
	settleDelay    string
}

// converterFlags holds flags that shape the converter itself.
type converterFlags struct {
	katexDir   string
	assetPath  string
	highlight  bool
	style      string
	browserBin string
	noSandbox  bool
	keepHTML   bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	title     string
	htmlOnly  bool
	render    renderFlags
	converter converterFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common    commonFlags
	addr      string
	maxBody   int64
	workers   int
	render    renderFlags
	converter converterFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show stage and render state logs")
}

// addRenderFlags adds render timing flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "overall conversion timeout (e.g., 90s, 2m)")
	fs.StringVar(&f.navTimeout, "nav-timeout", "", "navigation and network idle timeout (default 30s)")
	fs.StringVar(&f.networkIdle, "network-idle", "", "quiet window that counts as network idle (default 500ms)")
	fs.StringVar(&f.diagramTimeout, "diagram-timeout", "", "diagram rendering timeout (default 30s)")
	fs.StringVar(&f.settleDelay, "settle-delay", "", "delay before capture once diagrams render (default 500ms)")
}

// addConverterFlags adds math, code, asset and browser flags to a FlagSet.
func addConverterFlags(fs *flag.FlagSet, f *converterFlags) {
	fs.StringVar(&f.katexDir, "katex-dir", "", "KaTeX dist directory (katex.min.css, katex.min.js)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding styles/print.css and templates/document.html")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax-highlight code blocks")
	fs.StringVar(&f.style, "style", "", "highlight style name (implies --highlight)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome or Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the browser sandbox")
	fs.BoolVar(&f.keepHTML, "keep-html", false, "keep the render document next to the output, even on failure (debugging)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = auto from H1)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write the assembled HTML only, skip the browser")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addConverterFlags(fs, &f.converter)

	fs.SetOutput(w)
	fs.Usage = func() { printConvertUsage(w) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8080)")
	fs.Int64Var(&f.maxBody, "max-body", 0, "maximum request body in bytes (default 4 MiB)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent conversions (0 = auto)")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addConverterFlags(fs, &f.converter)

	fs.SetOutput(w)
	fs.Usage = func() { printServeUsage(w) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelpShown
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}
