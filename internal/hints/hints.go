// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdprint/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// browserDependencyMarkers are fragments of launcher/Chrome messages that
// point to a missing or broken browser installation.
var browserDependencyMarkers = []string{
	"error while loading shared libraries",
	"cannot open shared object file",
	"chromium",
	"chrome",
	"executable file not found",
	"no usable sandbox",
	"failed to launch",
}

// MatchesBrowserDependency reports whether msg looks like a browser
// installation problem rather than a document problem.
func MatchesBrowserDependency(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range browserDependencyMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ForBrowserLaunch returns hints for browser launch and connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserLaunch(msg string) string {
	var hints []string

	lower := strings.ToLower(msg)
	if strings.Contains(lower, "shared librar") || strings.Contains(lower, "shared object") {
		hints = append(hints, "install Chromium system dependencies (e.g. apt-get install chromium) and run 'mdprint doctor'")
	}

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer() || strings.Contains(lower, "sandbox")) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForNavigationTimeout returns a hint for documents that never reach network idle.
func ForNavigationTimeout() string {
	return format("check network access to the diagram runtime CDN, or raise --nav-timeout")
}

// ForDiagramTimeout returns a hint for diagrams that never finish rendering.
func ForDiagramTimeout() string {
	return format("check diagram syntax, or raise --diagram-timeout for large diagrams")
}

// ForKaTeXNotFound returns hints for a missing math stylesheet bundle.
func ForKaTeXNotFound(searched []string) string {
	hint := "run 'npm install katex' or pass --katex-dir / set MDPRINT_KATEX_DIR"
	if len(searched) > 0 {
		hint += " (searched: " + strings.Join(searched, ", ") + ")"
	}
	return format(hint)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdprint/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdprint") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
