package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
	"github.com/alnah/go-minidocs/internal/fileutil"
	"github.com/alnah/go-minidocs/internal/hints"
)

// pagesSuffix names the preview written next to each input.
const pagesSuffix = ".pages.html"

// inputExtensions lists the files paginate accepts.
var inputExtensions = []string{".html", ".htm", ".md", ".markdown"}

// pageJob is one input file and where its preview goes.
type pageJob struct {
	InputPath  string
	OutputPath string
}

// pageResult holds the outcome of a single pagination.
type pageResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Err        error
	Duration   time.Duration
}

// discoverInputs expands patterns (plain paths or doublestar globs) into
// a sorted list of input files. Previews written by an earlier run are
// skipped.
func discoverInputs(patterns []string, outDir string) ([]pageJob, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrUsage, pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !isPaginateInput(m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w%s", ErrNoInput, hints.ForNoInput(patterns))
	}

	slices.Sort(paths)
	jobs := make([]pageJob, len(paths))
	for i, p := range paths {
		jobs[i] = pageJob{InputPath: p, OutputPath: fileutil.SiblingPath(p, pagesSuffix, outDir)}
	}
	return jobs, nil
}

func isPaginateInput(path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, pagesSuffix) {
		return false
	}
	return slices.Contains(inputExtensions, filepath.Ext(lower))
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// runPaginate writes a paged preview for every matched input.
func runPaginate(ctx context.Context, args []string, flags *commandFlags, cfg *config.Config, opts []minidocs.Option, env *Environment) error {
	jobs, err := discoverInputs(args, flags.output)
	if err != nil {
		return err
	}

	pool := minidocs.NewEditorPool(min(minidocs.ResolvePoolSize(cfg.Workers), len(jobs)), opts...)
	defer func() { _ = pool.Close() }()
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", pool.Size())
	}

	results := paginateBatch(ctx, pool, jobs, flags)
	return printResults(results, flags.common.quiet, flags.common.verbose, env)
}

// paginateBatch processes jobs concurrently, one worker per pool slot.
func paginateBatch(ctx context.Context, pool *minidocs.EditorPool, jobs []pageJob, flags *commandFlags) []pageResult {
	results := make([]pageResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for range pool.Size() {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ed, err := pool.Acquire(ctx)
			if err != nil {
				for idx := range queue {
					results[idx] = pageResult{InputPath: jobs[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(ed)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = pageResult{InputPath: jobs[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = paginateFile(ctx, ed, jobs[idx], flags)
			}
		}()
	}

	wg.Wait()
	return results
}

// paginateFile lays out one file and writes its preview.
func paginateFile(ctx context.Context, ed *minidocs.Editor, job pageJob, flags *commandFlags) pageResult {
	start := time.Now()
	result := pageResult{InputPath: job.InputPath, OutputPath: job.OutputPath}
	fail := func(err error) pageResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	data, err := os.ReadFile(job.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadInput, err))
	}
	content := string(data)
	if isMarkdown(job.InputPath) {
		if content, err = ed.MarkdownToHTML(ctx, content); err != nil {
			return fail(err)
		}
	}

	title := flags.title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(job.InputPath), filepath.Ext(job.InputPath))
	}

	res, err := ed.Paginate(ctx, minidocs.PaginateInput{
		HTML:         content,
		Title:        title,
		SourceDir:    filepath.Dir(job.InputPath),
		RenderVisual: !flags.raw,
	})
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrOutputDir, err))
	}
	if err := os.WriteFile(job.OutputPath, []byte(res.HTML), filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	result.Pages = len(res.Pages)
	result.Duration = time.Since(start)
	return result
}

// printResults reports every result and returns the first failure.
func printResults(results []pageResult, quiet, verbose bool, env *Environment) error {
	var failed int
	var first error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)\n", r.InputPath, r.OutputPath, r.Pages, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return first
}
