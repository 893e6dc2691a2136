package main

import (
	"fmt"
	"io"

	"github.com/alnah/go-minidocs/internal/config"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: minidocs <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  sanitize   Repair Mermaid diagram source")
	fmt.Fprintln(w, "  render     Render diagram and chart blocks of an HTML file")
	fmt.Fprintln(w, "  markdown   Convert Markdown to an HTML fragment")
	fmt.Fprintln(w, "  paginate   Lay documents out on pages")
	fmt.Fprintln(w, "  serve      Start the preview server")
	fmt.Fprintln(w, "  doctor     Check the browser environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command or 'config'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'minidocs help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
}

func printEditorFlags(w io.Writer) {
	fmt.Fprintln(w, "  -t, --timeout <d>         Browser timeout per operation (e.g., 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "      --margin <mm>         Page margin in millimetres")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and templates/ directory")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file for paged output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	w := env.Stdout
	if len(args) == 0 {
		printUsage(w)
		return ExitSuccess
	}

	switch args[0] {
	case cmdSanitize:
		fmt.Fprintln(w, "Usage: minidocs sanitize [file|-] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Repair common defects in Mermaid source read from a file or stdin.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -k, --kind                Print the diagram kind to stderr")
		printCommonFlags(w)
	case cmdRender:
		fmt.Fprintln(w, "Usage: minidocs render <file.html> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Render every mermaid and chart block of an HTML document or fragment.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
		printEditorFlags(w)
		printCommonFlags(w)
	case cmdMarkdown:
		fmt.Fprintln(w, "Usage: minidocs markdown [file|-] [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Convert Markdown to an HTML fragment ready for insertion.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
		fmt.Fprintln(w, "  -r, --render              Render diagram and chart blocks")
		printEditorFlags(w)
		printCommonFlags(w)
	case cmdPaginate:
		fmt.Fprintln(w, "Usage: minidocs paginate <file|glob>... [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Lay HTML or Markdown documents out on pages and write <name>.pages.html.")
		fmt.Fprintln(w, "Globs support ** (quote them): 'docs/**/*.html'")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each input)")
		fmt.Fprintln(w, "      --title <s>           Preview title (default: file name)")
		fmt.Fprintln(w, "      --no-render           Lay out visual blocks unrendered")
		printEditorFlags(w)
		printCommonFlags(w)
	case cmdServe:
		fmt.Fprintln(w, "Usage: minidocs serve [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Start the HTTP API and the WebSocket editing session.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default: :8080)")
		fmt.Fprintln(w, "      --allow-all           Allow all CORS origins")
		printEditorFlags(w)
		printCommonFlags(w)
	case cmdDoctor:
		fmt.Fprintln(w, "Usage: minidocs doctor [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Chrome, that the mermaid and Chart.js scripts resolve, and that")
		fmt.Fprintln(w, "an editor builds from the resolved config.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprintln(w, "      --json                Output as JSON")
		printCommonFlags(w)
	case cmdVersion:
		fmt.Fprintln(w, "Usage: minidocs version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(w, "Usage: minidocs help [command|config]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command, or a sample config file.")
	case "config":
		sample, err := config.Sample()
		if err != nil {
			fmt.Fprintf(env.Stderr, "rendering sample config: %v\n", err)
			return ExitGeneral
		}
		fmt.Fprintln(w, "# minidocs configuration (all fields optional)")
		fmt.Fprint(w, sample)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# Environment overrides: MINIDOCS_CONFIG, MINIDOCS_TIMEOUT, MINIDOCS_WORKERS,")
		fmt.Fprintln(w, "# MINIDOCS_ADDR, MINIDOCS_MERMAID_SCRIPT, MINIDOCS_CHART_SCRIPT")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
