package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdprint/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath     string        // MDPRINT_CONFIG: config file name or path
	Timeout        time.Duration // MDPRINT_TIMEOUT: overall conversion timeout
	KaTeXDir       string        // MDPRINT_KATEX_DIR: KaTeX dist directory
	AssetPath      string        // MDPRINT_ASSET_PATH: theme override directory
	DiagramTimeout string        // MDPRINT_DIAGRAM_TIMEOUT: diagram rendering timeout
	NavTimeout     string        // MDPRINT_NAV_TIMEOUT: navigation timeout
	Style          string        // MDPRINT_STYLE: highlight style, enables highlighting
	Addr           string        // MDPRINT_ADDR: serve listen address

	// Browser variables shared with rod.
	BrowserBin string // ROD_BROWSER_BIN
	NoSandbox  bool   // ROD_NO_SANDBOX=1 or CI=true
}

// knownEnvVars lists valid MDPRINT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDPRINT_CONFIG":          true,
	"MDPRINT_TIMEOUT":         true,
	"MDPRINT_KATEX_DIR":       true,
	"MDPRINT_ASSET_PATH":      true,
	"MDPRINT_DIAGRAM_TIMEOUT": true,
	"MDPRINT_NAV_TIMEOUT":     true,
	"MDPRINT_STYLE":           true,
	"MDPRINT_ADDR":            true,
	"MDPRINT_CONTAINER":       true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("MDPRINT_CONFIG"),
		KaTeXDir:       os.Getenv("MDPRINT_KATEX_DIR"),
		AssetPath:      os.Getenv("MDPRINT_ASSET_PATH"),
		DiagramTimeout: os.Getenv("MDPRINT_DIAGRAM_TIMEOUT"),
		NavTimeout:     os.Getenv("MDPRINT_NAV_TIMEOUT"),
		Style:          os.Getenv("MDPRINT_STYLE"),
		Addr:           os.Getenv("MDPRINT_ADDR"),
		BrowserBin:     os.Getenv("ROD_BROWSER_BIN"),
		NoSandbox:      envBool("ROD_NO_SANDBOX") || envBool("CI"),
	}

	// Invalid durations are ignored here; flags and config are validated later.
	if timeout := os.Getenv("MDPRINT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDPRINT_* variables.
// Helps catch typos like MDPRINT_KATEX instead of MDPRINT_KATEX_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDPRINT_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the config file.
// Flags are merged afterwards, giving: flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.KaTeXDir != "" {
		cfg.Math.KaTeXDir = env.KaTeXDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.DiagramTimeout != "" {
		cfg.Render.DiagramTimeout = env.DiagramTimeout
	}
	if env.NavTimeout != "" {
		cfg.Render.NavigationTimeout = env.NavTimeout
	}
	if env.Style != "" {
		cfg.Code.Style = env.Style
		cfg.Code.Highlight = true
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
}

// envBool reports whether the variable is set to a true value (1, true).
func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
