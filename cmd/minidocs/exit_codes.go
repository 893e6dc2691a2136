package main

import (
	"context"
	"errors"
	"os"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
	"github.com/alnah/go-minidocs/internal/hints"
)

// Exit codes for the minidocs CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, minidocs.ErrBrowserConnect) ||
		errors.Is(err, minidocs.ErrPageCreate) ||
		errors.Is(err, minidocs.ErrPageLoad) ||
		errors.Is(err, minidocs.ErrScriptLoad) ||
		errors.Is(err, minidocs.ErrMeasure) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, minidocs.ErrInvalidGeometry) ||
		errors.Is(err, minidocs.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, minidocs.ErrBrowserConnect), errors.Is(err, minidocs.ErrPageCreate):
		return hints.ForBrowserConnect()
	case errors.Is(err, minidocs.ErrScriptLoad):
		return hints.ForScriptLoad()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
