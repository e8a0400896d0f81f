package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdprint <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a markdown file to PDF")
	fmt.Fprintln(w, "  serve      Serve conversions over HTTP")
	fmt.Fprintln(w, "  doctor     Check browser, KaTeX and system setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "'mdprint doc.md' is short for 'mdprint convert doc.md'.")
	fmt.Fprintln(w, "Run 'mdprint help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdprint convert <input> [output] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a markdown file with math and mermaid diagrams to an A4 PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     Markdown file")
	fmt.Fprintln(w, "  output    PDF path (default: input with .pdf extension)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output PDF path")
	fmt.Fprintln(w, "      --title <s>             Document title (\"\" = auto from H1)")
	fmt.Fprintln(w, "      --html-only             Write <output>.html and skip the browser")
	fmt.Fprintln(w, "      --keep-html             Keep the render document next to the output, even on\n                              failure; it is otherwise always deleted")
	fmt.Fprintln(w)
	printConverterFlags(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdprint serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve conversions over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /convert[?title=...]   Markdown body in, application/pdf out")
	fmt.Fprintln(w, "                              (X-Page-Count header holds the page count)")
	fmt.Fprintln(w, "  GET  /healthz               Liveness check")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>           Listen address (default :8080)")
	fmt.Fprintln(w, "      --max-body <n>          Maximum request body in bytes (default 4 MiB)")
	fmt.Fprintln(w, "  -w, --workers <n>           Concurrent conversions (0 = auto)")
	fmt.Fprintln(w)
	printConverterFlags(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdprint doctor [--json] [--katex-dir <dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome, KaTeX and a writable temp directory are available.")
	fmt.Fprintln(w, "Exits 1 on any failure, including bad flags or configuration.")
}

func printConverterFlags(w io.Writer) {
	fmt.Fprintln(w, "Render timings:")
	fmt.Fprintln(w, "  -t, --timeout <d>           Overall conversion timeout (e.g., 90s, 2m)")
	fmt.Fprintln(w, "      --nav-timeout <d>       Navigation and network idle timeout (default 30s)")
	fmt.Fprintln(w, "      --network-idle <d>      Quiet window counted as network idle (default 500ms)")
	fmt.Fprintln(w, "      --diagram-timeout <d>   Diagram rendering timeout (default 30s)")
	fmt.Fprintln(w, "      --settle-delay <d>      Delay before capture (default 500ms)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --katex-dir <dir>       KaTeX dist directory (or MDPRINT_KATEX_DIR)")
	fmt.Fprintln(w, "      --asset-path <dir>      Override styles/print.css, templates/document.html")
	fmt.Fprintln(w, "      --highlight             Syntax-highlight code blocks")
	fmt.Fprintln(w, "      --style <name>          Highlight style (implies --highlight)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --browser-bin <path>    Chrome or Chromium binary (or ROD_BROWSER_BIN)")
	fmt.Fprintln(w, "      --no-sandbox            Disable the sandbox (or ROD_NO_SANDBOX=1)")
	fmt.Fprintln(w)
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path (or MDPRINT_CONFIG)")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show stage and render state logs")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdprint version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdprint help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitFailure
	}
	return ExitSuccess
}
