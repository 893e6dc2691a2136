package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
)

// Command names.
const (
	cmdSanitize = "sanitize"
	cmdRender   = "render"
	cmdMarkdown = "markdown"
	cmdPaginate = "paginate"
	cmdServe    = "serve"
	cmdDoctor   = "doctor"
	cmdVersion  = "version"
	cmdHelp     = "help"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoInput     = errors.New("no input files")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
	ErrOutputDir   = errors.New("failed to create output directory")
)

// run executes the command line and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}
	cmd, rest := args[1], args[2:]

	switch cmd {
	case cmdHelp, "-h", "--help":
		return runHelp(rest, env)
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "minidocs %s\n", Version)
		return ExitSuccess
	case cmdSanitize, cmdRender, cmdMarkdown, cmdPaginate, cmdServe, cmdDoctor:
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	flags, positional, err := parseFlags(cmd, rest)
	if errors.Is(err, flag.ErrHelp) {
		return runHelp([]string{cmd}, env)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "minidocs %s: %v\n", cmd, err)
		return ExitUsage
	}

	if cmd == cmdDoctor {
		return runDoctorCmd(flags, env)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runCommand(ctx, cmd, flags, positional, env); err != nil {
		fmt.Fprintf(env.Stderr, "minidocs %s: %v%s\n", cmd, err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func runCommand(ctx context.Context, cmd string, flags *commandFlags, args []string, env *Environment) error {
	if cmd == cmdSanitize {
		return runSanitize(args, flags, env)
	}

	ec := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}
	cfg, err := resolveConfig(flags, ec)
	if err != nil {
		return err
	}
	opts, err := editorOptions(cfg, flags, env)
	if err != nil {
		return err
	}

	switch cmd {
	case cmdRender:
		return runRender(ctx, args, flags, opts, env)
	case cmdMarkdown:
		return runMarkdown(ctx, args, flags, opts, env)
	case cmdPaginate:
		return runPaginate(ctx, args, flags, cfg, opts, env)
	case cmdServe:
		return runServe(ctx, flags, cfg, opts, env)
	}
	return fmt.Errorf("%w: unknown command %s", ErrUsage, cmd)
}

// editorOptions translates the resolved config into Editor options.
func editorOptions(cfg *config.Config, flags *commandFlags, env *Environment) ([]minidocs.Option, error) {
	opts := []minidocs.Option{
		minidocs.WithGeometry(minidocs.PageGeometry{
			WidthMM:  cfg.Page.WidthMM,
			HeightMM: cfg.Page.HeightMM,
			MarginMM: cfg.Page.MarginMM,
			PxPerMM:  cfg.Page.PxPerMM,
		}),
		minidocs.WithTolerance(cfg.Pagination.Tolerance),
		minidocs.WithScripts(cfg.Renderer.MermaidScript, cfg.Renderer.ChartScript),
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, minidocs.WithTimeout(d))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, minidocs.WithAssetPath(cfg.Assets.BasePath))
	}
	if flags.editor.css != "" {
		css, err := os.ReadFile(flags.editor.css) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		opts = append(opts, minidocs.WithCSS(string(css)))
	}
	return append(opts, env.EditorOptions...), nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(name string, env *Environment) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "" || name == "-" {
		data, err = io.ReadAll(env.Stdin)
	} else {
		data, err = os.ReadFile(name) // #nosec G304 -- user-provided path
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

// writeOutput writes content to the named file, or stdout when name is "".
func writeOutput(name, content string, env *Environment) error {
	if name == "" {
		_, err := io.WriteString(env.Stdout, content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if err := os.WriteFile(name, []byte(content), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// singleArg returns the only positional argument, or "" when absent.
func singleArg(args []string, required bool) (string, error) {
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	case len(args) == 0 && required:
		return "", fmt.Errorf("%w: missing input file", ErrUsage)
	case len(args) == 0:
		return "", nil
	}
	return args[0], nil
}

// withEditor runs fn with a single-editor pool closed afterwards.
func withEditor(ctx context.Context, opts []minidocs.Option, fn func(ed *minidocs.Editor) error) error {
	pool := minidocs.NewEditorPool(1, opts...)
	defer func() { _ = pool.Close() }()

	ed, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(ed)
	return fn(ed)
}
