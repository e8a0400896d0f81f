package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	mdprint "github.com/alnah/go-mdprint"
	"github.com/alnah/go-mdprint/internal/config"
)

// settings is the resolved configuration of one command run.
type settings struct {
	cfg     *config.Config
	timings mdprint.RenderConfig
	timeout time.Duration // overall, 0 = none
}

// loadSettings resolves flags > env vars > config file > defaults.
func loadSettings(common commonFlags, rf renderFlags, cf converterFlags, stderr io.Writer) (*settings, error) {
	if !common.quiet {
		warnUnknownEnvVars(stderr)
	}
	env := loadEnvConfig()

	cfg := config.DefaultConfig()
	name := common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)
	mergeFlags(rf, cf, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timings, err := cfg.RenderTimings()
	if err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(rf.timeout, env.Timeout)
	if err != nil {
		return nil, err
	}

	return &settings{cfg: cfg, timings: timings, timeout: timeout}, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(rf renderFlags, cf converterFlags, cfg *config.Config) {
	if rf.navTimeout != "" {
		cfg.Render.NavigationTimeout = rf.navTimeout
	}
	if rf.networkIdle != "" {
		cfg.Render.NetworkIdle = rf.networkIdle
	}
	if rf.diagramTimeout != "" {
		cfg.Render.DiagramTimeout = rf.diagramTimeout
	}
	if rf.settleDelay != "" {
		cfg.Render.SettleDelay = rf.settleDelay
	}

	if cf.katexDir != "" {
		cfg.Math.KaTeXDir = cf.katexDir
	}
	if cf.assetPath != "" {
		cfg.Assets.BasePath = cf.assetPath
	}
	if cf.highlight {
		cfg.Code.Highlight = true
	}
	if cf.style != "" {
		cfg.Code.Style = cf.style
		cfg.Code.Highlight = true
	}
	if cf.browserBin != "" {
		cfg.Browser.Bin = cf.browserBin
	}
	if cf.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if cf.keepHTML {
		cfg.Output.KeepHTML = true
	}
}

// resolveTimeout picks the overall timeout: flag, then env. Zero means the
// per-stage timeouts alone bound a conversion.
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue == "" {
		return envValue, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q: %v", ErrUsage, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, flagValue)
	}
	return d, nil
}

// converterOptions turns settings into library options. searchDirs are
// probed for node_modules/katex/dist.
func converterOptions(s *settings, logger *slog.Logger, searchDirs ...string) []mdprint.Option {
	cfg := s.cfg
	opts := []mdprint.Option{
		mdprint.WithLogger(logger),
		mdprint.WithRenderConfig(s.timings),
		mdprint.WithKaTeXDir(cfg.Math.KaTeXDir),
		mdprint.WithSearchDirs(searchDirs...),
		mdprint.WithAssetPath(cfg.Assets.BasePath),
		mdprint.WithBrowserBin(cfg.Browser.Bin),
		mdprint.WithNoSandbox(cfg.Browser.NoSandbox),
		mdprint.WithKeepHTML(cfg.Output.KeepHTML),
	}
	if cfg.Code.Highlight {
		opts = append(opts, mdprint.WithHighlighting(cfg.Code.Style))
	}
	if s.timeout > 0 {
		opts = append(opts, mdprint.WithTimeout(s.timeout))
	}
	return opts
}

// newLogger builds the stderr logger: Info by default, Debug with
// --verbose, errors only with --quiet.
func newLogger(w io.Writer, common commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case common.quiet:
		level = slog.LevelError
	case common.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// workingDir returns the current directory, or "" when it cannot be read.
func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
