package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		{"browser connect", minidocs.ErrBrowserConnect, ExitBrowser},
		{"page load", minidocs.ErrPageLoad, ExitBrowser},
		{"script load", minidocs.ErrScriptLoad, ExitBrowser},
		{"measure", minidocs.ErrMeasure, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", minidocs.ErrBrowserConnect), ExitBrowser},

		{"file not exist", os.ErrNotExist, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},

		{"usage", ErrUsage, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"invalid geometry", minidocs.ErrInvalidGeometry, ExitUsage},
		{"invalid asset path", minidocs.ErrInvalidAssetPath, ExitUsage},

		{"render failure", minidocs.ErrRender, ExitGeneral},
		{"unknown error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_UnixConventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("standard exit codes changed")
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", code)
		}
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", minidocs.ErrScriptLoad), "MINIDOCS_MERMAID_SCRIPT"},
		{context.DeadlineExceeded, "--timeout"},
		{config.ErrConfigNotFound, "--config"},
		{ErrOutputDir, "writable"},
		{errors.New("plain"), ""},
	}
	for _, tt := range tests {
		got := hintFor(tt.err)
		if tt.want == "" && got != "" {
			t.Errorf("hintFor(%v) = %q, want none", tt.err, got)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("hintFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
