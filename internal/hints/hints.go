// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-minidocs/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for long documents or many diagrams, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-minidocs/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-minidocs") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForScriptLoad returns hints when mermaid.js or Chart.js cannot be loaded
// into the browser harness.
func ForScriptLoad() string {
	return format("check network access or point MINIDOCS_MERMAID_SCRIPT / MINIDOCS_CHART_SCRIPT to a local file")
}

// ForGanttTasks explains the task syntax gantt diagrams require.
func ForGanttTasks() string {
	return format("in a gantt chart every task needs data after a colon: `Task : id, 2024-01-01, 10d` or `: after otherId, 5d`")
}

// ForDiagramSyntax is the generic hint for diagrams that fail to parse.
func ForDiagramSyntax() string {
	return format("look for trailing text after ] or ), stray characters on a line, and a closing `end` for every `subgraph`")
}

// ForNoInput returns hints when a glob matched no files.
func ForNoInput(patterns []string) string {
	if len(patterns) == 0 {
		return format("pass at least one file or glob, e.g. 'docs/**/*.html'")
	}
	return format("no file matched " + strings.Join(patterns, ", ") + "; quote globs so the shell does not expand them")
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
