package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdprint/internal/assets"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	KaTeX    katexInfo  `json:"katex"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// katexInfo holds KaTeX distribution detection results.
type katexInfo struct {
	Found    bool     `json:"found"`
	Dir      string   `json:"dir,omitempty"`
	Searched []string `json:"searched,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// chromeVersionTimeout bounds "chrome --version".
const chromeVersionTimeout = 10 * time.Second

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "print the report as JSON")
	katexDir := fs.String("katex-dir", "", "KaTeX dist directory to check first")
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		if errors.Is(err, errHelpShown) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitFailure
	}

	result := runDoctor(*katexDir)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitFailure
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(katexDir string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkKaTeX(result, katexDir)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			// rod downloads a browser on first launch when none is installed.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; a browser will be downloaded on first conversion. Install Chrome or set ROD_BROWSER_BIN to avoid it")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	ctx, cancel := context.WithTimeout(context.Background(), chromeVersionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, chromePath, "--version").Output() // #nosec G204 -- browser path from env or lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = !envBool("ROD_NO_SANDBOX")
}

// checkKaTeX locates the KaTeX distribution the converter would load.
func checkKaTeX(result *doctorResult, explicit string) {
	dist, err := assets.LocateKaTeX(assets.KaTeXCandidates(explicit, workingDir())...)
	if err != nil {
		var locErr *assets.LocationError
		if errors.As(err, &locErr) {
			result.KaTeX.Searched = locErr.Searched
		}
		result.Errors = append(result.Errors,
			"KaTeX not found. Run 'npm install katex' or set MDPRINT_KATEX_DIR")
		return
	}
	result.KaTeX.Found = true
	result.KaTeX.Dir = dist.Dir
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !envBool("ROD_NO_SANDBOX") {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MDPRINT_CONTAINER") == "1" {
		return true, "MDPRINT_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the render document can be written somewhere.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdprint-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdprint doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not installed")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "KaTeX")
	if r.KaTeX.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.KaTeX.Dir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Not found (%d locations searched)\n", len(r.KaTeX.Searched))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
