package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdprint/internal/fileutil"
	"github.com/alnah/go-mdprint/internal/render"
	"github.com/alnah/go-mdprint/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits on free-form fields.
const (
	MaxPathLength      = 4096
	MaxStyleLength     = 64
	MaxAddrLength      = 255
	MaxServerBodyBytes = 64 << 20
	MaxServerWorkers   = 32
)

// appDir is the directory under the user config dir searched for named configs.
const appDir = "go-mdprint"

// Config holds everything the CLI and server can read from a file.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Math    MathConfig    `yaml:"math"`
	Code    CodeConfig    `yaml:"code"`
	Assets  AssetsConfig  `yaml:"assets"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// RenderConfig holds orchestrator timings as Go duration strings ("30s",
// "500ms"). Empty keeps the default.
type RenderConfig struct {
	NavigationTimeout string `yaml:"navigationTimeout"`
	NetworkIdle       string `yaml:"networkIdle"`
	DiagramTimeout    string `yaml:"diagramTimeout"`
	PollInterval      string `yaml:"pollInterval"`
	SettleDelay       string `yaml:"settleDelay"`
}

// MathConfig locates the KaTeX distribution.
type MathConfig struct {
	KaTeXDir string `yaml:"katexDir"` // empty = search default locations
}

// CodeConfig controls generic code blocks.
type CodeConfig struct {
	Highlight bool   `yaml:"highlight"`
	Style     string `yaml:"style"` // chroma style name
}

// AssetsConfig points at a directory overriding the theme stylesheet and
// document template.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// BrowserConfig controls the headless browser.
type BrowserConfig struct {
	Bin       string `yaml:"bin"` // empty = auto-detect or download
	NoSandbox bool   `yaml:"noSandbox"`
}

// OutputConfig controls what is left on disk.
type OutputConfig struct {
	KeepHTML bool `yaml:"keepHTML"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"`
	Workers      int    `yaml:"workers"` // concurrent conversions, 0 = auto
}

// NotFoundError lists the locations searched for a named config.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// DefaultConfig returns a configuration with every default filled in.
func DefaultConfig() *Config {
	def := render.DefaultConfig()
	return &Config{
		Render: RenderConfig{
			NavigationTimeout: def.NavigationTimeout.String(),
			NetworkIdle:       def.NetworkIdle.String(),
			DiagramTimeout:    def.DiagramTimeout.String(),
			PollInterval:      def.PollInterval.String(),
			SettleDelay:       def.SettleDelay.String(),
		},
		Code:   CodeConfig{Style: "github"},
		Server: ServerConfig{Addr: ":8080", MaxBodyBytes: 4 << 20},
	}
}

// Validate checks field limits and that the timings form a usable
// render.Config. Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if _, err := c.RenderTimings(); err != nil {
		return err
	}
	if err := validateFieldLength("math.katexDir", c.Math.KaTeXDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("code.style", c.Code.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 || c.Server.MaxBodyBytes > MaxServerBodyBytes {
		return fmt.Errorf("%w: server.maxBodyBytes must be between 0 and %d, got %d",
			ErrInvalidValue, MaxServerBodyBytes, c.Server.MaxBodyBytes)
	}
	if c.Server.Workers < 0 || c.Server.Workers > MaxServerWorkers {
		return fmt.Errorf("%w: server.workers must be between 0 and %d, got %d",
			ErrInvalidValue, MaxServerWorkers, c.Server.Workers)
	}
	return nil
}

// RenderTimings converts the render section into a validated render.Config.
// Empty fields take the defaults.
func (c *Config) RenderTimings() (render.Config, error) {
	cfg := render.DefaultConfig()
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"render.navigationTimeout", c.Render.NavigationTimeout, &cfg.NavigationTimeout},
		{"render.networkIdle", c.Render.NetworkIdle, &cfg.NetworkIdle},
		{"render.diagramTimeout", c.Render.DiagramTimeout, &cfg.DiagramTimeout},
		{"render.pollInterval", c.Render.PollInterval, &cfg.PollInterval},
		{"render.settleDelay", c.Render.SettleDelay, &cfg.SettleDelay},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return render.Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.name, err)
		}
		*f.dst = d
	}
	if err := cfg.Validate(); err != nil {
		return render.Config{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return cfg, nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s is %d bytes, max %d", ErrInvalidValue, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads a config by name or path. A name ("ci") is searched as
// ./ci.yaml, ./ci.yml, then under the user config directory; anything that
// looks like a path is read as is. Keys are decoded strictly.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: nameOrPath, Tried: []string{configPath}}
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg, yamlutil.Strict); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isFilePath(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return fileutil.IsFilePath(s) || ext == ".yaml" || ext == ".yml"
}

func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		tried = append(tried, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			tried = append(tried, userPath)
		}
	}

	return "", &NotFoundError{Name: name, Tried: tried}
}
