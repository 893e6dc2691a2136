package main

import (
	"context"
	"fmt"
	"strings"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/mermaid"
)

// runSanitize prints the repaired Mermaid source of a file or stdin.
func runSanitize(args []string, flags *commandFlags, env *Environment) error {
	name, err := singleArg(args, false)
	if err != nil {
		return err
	}
	source, err := readInput(name, env)
	if err != nil {
		return err
	}

	out := mermaid.Sanitize(strings.TrimRight(source, "\n"))
	if flags.kind {
		kind := mermaid.DetectKind(out)
		if kind == mermaid.KindUnknown {
			kind = "unknown"
		}
		fmt.Fprintf(env.Stderr, "kind: %s\n", kind)
	}
	return writeOutput("", out+"\n", env)
}

// runRender renders the diagram and chart blocks of an HTML file.
func runRender(ctx context.Context, args []string, flags *commandFlags, opts []minidocs.Option, env *Environment) error {
	name, err := singleArg(args, true)
	if err != nil {
		return err
	}
	content, err := readInput(name, env)
	if err != nil {
		return err
	}

	var out string
	err = withEditor(ctx, opts, func(ed *minidocs.Editor) (err error) {
		out, err = ed.RenderVisualBlocks(ctx, content)
		return err
	})
	if err != nil {
		return err
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Rendered %s\n", name)
	}
	return writeOutput(flags.output, out, env)
}

// runMarkdown converts a Markdown file or stdin to an HTML fragment.
func runMarkdown(ctx context.Context, args []string, flags *commandFlags, opts []minidocs.Option, env *Environment) error {
	name, err := singleArg(args, false)
	if err != nil {
		return err
	}
	markdown, err := readInput(name, env)
	if err != nil {
		return err
	}

	var out string
	err = withEditor(ctx, opts, func(ed *minidocs.Editor) (err error) {
		if out, err = ed.MarkdownToHTML(ctx, markdown); err != nil || !flags.render {
			return err
		}
		out, err = ed.RenderVisualBlocks(ctx, out)
		return err
	})
	if err != nil {
		return err
	}
	return writeOutput(flags.output, out, env)
}
