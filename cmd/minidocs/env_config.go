package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-minidocs/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath    string        // MINIDOCS_CONFIG: config file path
	Timeout       time.Duration // MINIDOCS_TIMEOUT: browser timeout
	Workers       int           // MINIDOCS_WORKERS: parallel browsers
	Addr          string        // MINIDOCS_ADDR: server listen address
	MermaidScript string        // MINIDOCS_MERMAID_SCRIPT: mermaid.js URL
	ChartScript   string        // MINIDOCS_CHART_SCRIPT: Chart.js URL
}

// knownEnvVars lists valid MINIDOCS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MINIDOCS_CONFIG":         true,
	"MINIDOCS_TIMEOUT":        true,
	"MINIDOCS_WORKERS":        true,
	"MINIDOCS_ADDR":           true,
	"MINIDOCS_MERMAID_SCRIPT": true,
	"MINIDOCS_CHART_SCRIPT":   true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("MINIDOCS_CONFIG"),
		Addr:          os.Getenv("MINIDOCS_ADDR"),
		MermaidScript: os.Getenv("MINIDOCS_MERMAID_SCRIPT"),
		ChartScript:   os.Getenv("MINIDOCS_CHART_SCRIPT"),
	}

	if timeout := os.Getenv("MINIDOCS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MINIDOCS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MINIDOCS_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MINIDOCS_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the variables that
// are set. Flags are applied afterwards by mergeFlags, so the order is
// flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Renderer.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.MermaidScript != "" {
		cfg.Renderer.MermaidScript = env.MermaidScript
	}
	if env.ChartScript != "" {
		cfg.Renderer.ChartScript = env.ChartScript
	}
}

// mergeFlags applies explicitly set flags to cfg.
func mergeFlags(f *commandFlags, cfg *config.Config) {
	if f.editor.timeout != "" {
		cfg.Renderer.Timeout = f.editor.timeout
	}
	if f.editor.workers > 0 {
		cfg.Workers = f.editor.workers
	}
	if f.editor.marginMM > 0 {
		cfg.Page.MarginMM = f.editor.marginMM
	}
	if f.editor.assetPath != "" {
		cfg.Assets.BasePath = f.editor.assetPath
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.all {
		cfg.Server.AllowAll = true
	}
}

// resolveConfig loads the config file named by the flag or
// MINIDOCS_CONFIG, then applies env and flag overrides.
func resolveConfig(f *commandFlags, env *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := f.common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
