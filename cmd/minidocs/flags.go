package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// editorFlags holds flags that shape the editor backend.
type editorFlags struct {
	timeout   string
	workers   int
	marginMM  float64
	assetPath string
	css       string
}

// commandFlags holds the flags of every command; each command registers
// only the groups it uses.
type commandFlags struct {
	common commonFlags
	editor editorFlags
	output string
	title  string
	render bool // markdown: render visual blocks
	raw    bool // paginate: skip rendering before layout
	kind   bool // sanitize: report the diagram kind
	addr   string
	all    bool // serve: allow all CORS origins
	json   bool // doctor
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addEditorFlags adds editor backend flags to a FlagSet.
func addEditorFlags(fs *flag.FlagSet, f *editorFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout per operation (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.Float64Var(&f.marginMM, "margin", 0, "page margin in millimetres")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.css, "css", "", "extra CSS file for paged output")
}

// parseFlags parses the flags of cmd and returns positional args.
func parseFlags(cmd string, args []string) (*commandFlags, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	f := &commandFlags{}

	addCommonFlags(fs, &f.common)

	switch cmd {
	case cmdSanitize:
		fs.BoolVarP(&f.kind, "kind", "k", false, "print the diagram kind to stderr")
	case cmdRender:
		addEditorFlags(fs, &f.editor)
		fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	case cmdMarkdown:
		addEditorFlags(fs, &f.editor)
		fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
		fs.BoolVarP(&f.render, "render", "r", false, "render diagram and chart blocks")
	case cmdPaginate:
		addEditorFlags(fs, &f.editor)
		fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each input)")
		fs.StringVar(&f.title, "title", "", "preview title (default: file name)")
		fs.BoolVar(&f.raw, "no-render", false, "lay out visual blocks unrendered")
	case cmdServe:
		addEditorFlags(fs, &f.editor)
		fs.StringVarP(&f.addr, "addr", "a", "", "listen address (e.g., :8080)")
		fs.BoolVar(&f.all, "allow-all", false, "allow all CORS origins")
	case cmdDoctor:
		fs.BoolVar(&f.json, "json", false, "output as JSON")
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
