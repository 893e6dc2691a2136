// Package config loads and validates the YAML configuration shared by the
// CLI and the preview server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-minidocs/internal/fileutil"
	"github.com/alnah/go-minidocs/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxURLLength    = 2048 // Browser limit
	MaxPathLength   = 4096
	MaxAddrLength   = 255
	MaxOrigins      = 50
	MaxWorkers      = 32
	MaxDurationText = 20 // "1m30s", "300ms"
)

// Bounds for page geometry, in millimetres.
const (
	MinPageSideMM = 50.0
	MaxPageSideMM = 2000.0
)

// Default values.
const (
	DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"
	DefaultChartScript   = "https://cdn.jsdelivr.net/npm/chart.js@4/dist/chart.umd.min.js"
	DefaultDebounce      = "300ms"
	DefaultTimeout       = "30s"
	DefaultAddr          = ":8080"
	DefaultTolerance     = 0.5
)

// Config holds all configuration for the editor backend.
type Config struct {
	Page       PageConfig       `yaml:"page"`
	Pagination PaginationConfig `yaml:"pagination"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Server     ServerConfig     `yaml:"server"`
	Assets     AssetsConfig     `yaml:"assets"`
	Workers    int              `yaml:"workers"` // 0 = auto
}

// PageConfig defines page geometry.
type PageConfig struct {
	WidthMM  float64 `yaml:"widthMM"`
	HeightMM float64 `yaml:"heightMM"`
	MarginMM float64 `yaml:"marginMM"`
	PxPerMM  float64 `yaml:"pxPerMM"` // 0 = 96/25.4
}

// PaginationConfig defines the fit tolerance and the edit debounce delay.
type PaginationConfig struct {
	Tolerance float64 `yaml:"tolerance"` // px
	Debounce  string  `yaml:"debounce"`  // Go duration
}

// RendererConfig defines the browser scripts and render timeout.
type RendererConfig struct {
	MermaidScript string `yaml:"mermaidScript"`
	ChartScript   string `yaml:"chartScript"`
	Timeout       string `yaml:"timeout"` // Go duration
}

// ServerConfig defines the preview server.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	AllowAll       bool     `yaml:"allowAll"` // CORS "*"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// DefaultConfig returns an A4 configuration with the built-in scripts.
func DefaultConfig() *Config {
	return &Config{
		Page:       PageConfig{WidthMM: 210, HeightMM: 297, MarginMM: 20},
		Pagination: PaginationConfig{Tolerance: DefaultTolerance, Debounce: DefaultDebounce},
		Renderer: RendererConfig{
			MermaidScript: DefaultMermaidScript,
			ChartScript:   DefaultChartScript,
			Timeout:       DefaultTimeout,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// Validate checks bounds and field lengths. Called by LoadConfig, but
// available for callers who construct Config manually.
func (c *Config) Validate() error {
	p := c.Page
	for _, side := range []struct {
		name string
		v    float64
	}{{"page.widthMM", p.WidthMM}, {"page.heightMM", p.HeightMM}} {
		if side.v < MinPageSideMM || side.v > MaxPageSideMM {
			return fmt.Errorf("%w: %s must be between %g and %g, got %g",
				ErrInvalidValue, side.name, MinPageSideMM, MaxPageSideMM, side.v)
		}
	}
	if p.MarginMM < 0 || 2*p.MarginMM >= p.WidthMM || 2*p.MarginMM >= p.HeightMM {
		return fmt.Errorf("%w: page.marginMM must be non-negative and less than half of each side, got %g",
			ErrInvalidValue, p.MarginMM)
	}
	if p.PxPerMM < 0 {
		return fmt.Errorf("%w: page.pxPerMM must not be negative, got %g", ErrInvalidValue, p.PxPerMM)
	}

	if c.Pagination.Tolerance < 0 || c.Pagination.Tolerance > 50 {
		return fmt.Errorf("%w: pagination.tolerance must be between 0 and 50, got %g",
			ErrInvalidValue, c.Pagination.Tolerance)
	}
	if err := validateDuration("pagination.debounce", c.Pagination.Debounce); err != nil {
		return err
	}
	if err := validateDuration("renderer.timeout", c.Renderer.Timeout); err != nil {
		return err
	}

	if err := validateFieldLength("renderer.mermaidScript", c.Renderer.MermaidScript, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("renderer.chartScript", c.Renderer.ChartScript, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if len(c.Server.AllowedOrigins) > MaxOrigins {
		return fmt.Errorf("%w: server.allowedOrigins has %d entries (max %d)",
			ErrInvalidValue, len(c.Server.AllowedOrigins), MaxOrigins)
	}
	for i, o := range c.Server.AllowedOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.allowedOrigins[%d]", i), o, MaxURLLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	return nil
}

// DebounceDuration returns the parsed debounce delay, or zero when unset.
func (c *Config) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.Pagination.Debounce)
	return d
}

// TimeoutDuration returns the parsed render timeout, or zero when unset.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Renderer.Timeout)
	return d
}

func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationText); err != nil {
		return err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, fieldName, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched in the current directory and the user config
// directory. Fields missing from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.ReadStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Sample renders DefaultConfig as YAML, for `minidocs help config`.
func Sample() (string, error) {
	out, err := yamlutil.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// resolveConfigPath tries name.yaml and name.yml in the current directory,
// then in ~/.config/go-minidocs/.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-minidocs", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
