package minidocs

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/alnah/go-minidocs/internal/assets"
	"github.com/alnah/go-minidocs/internal/fileutil"
	"github.com/alnah/go-minidocs/internal/htmlutil"
	"github.com/alnah/go-minidocs/internal/mermaid"
	"github.com/alnah/go-minidocs/internal/paginate"
	"github.com/alnah/go-minidocs/internal/pipeline"
	"github.com/alnah/go-minidocs/internal/visual"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ SessionBackend                = (*Editor)(nil)
)

// Editor is the document backend: it sanitizes and renders visual blocks,
// converts inserted Markdown and paginates documents. Page geometry is
// fixed for the lifetime of an Editor.
//
// Create with NewEditor and Close when done. Engines not supplied through
// options share one lazily started headless Chrome.
type Editor struct {
	cfg       editorConfig
	converter pipeline.HTMLConverter
	measurer  Measurer
	diagrams  DiagramEngine
	charts    ChartEngine
	browser   *rodBrowser // nil when every engine is injected
	pageCSS   string
	flowCSS   string
}

// NewEditor creates an Editor with A4 geometry and the built-in scripts.
// Returns an error for invalid geometry or asset path.
func NewEditor(opts ...Option) (*Editor, error) {
	e := &Editor{
		cfg: editorConfig{
			timeout:       defaultTimeout,
			geometry:      A4(),
			tolerance:     paginate.DefaultTolerance,
			mermaidScript: DefaultMermaidScript,
			chartScript:   DefaultChartScript,
		},
		converter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.geometry.Validate(); err != nil {
		return nil, err
	}

	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if e.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}

	css, err := loader.LoadStyle(assets.PagesStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading page stylesheet: %w", err)
	}
	g := e.cfg.geometry
	e.pageCSS = assets.PageVars(g.WidthMM, g.HeightMM, g.MarginMM) + css
	if e.cfg.css != "" {
		e.pageCSS += "\n" + e.cfg.css
	}

	if e.flowCSS, err = loader.LoadStyle(assets.EditorStyleName); err != nil {
		return nil, fmt.Errorf("loading editor stylesheet: %w", err)
	}
	if e.cfg.css != "" {
		e.flowCSS += "\n" + e.cfg.css
	}

	if e.measurer == nil || e.diagrams == nil || e.charts == nil {
		harness, err := assets.RenderHarness(loader, assets.HarnessData{
			CSS:            e.pageCSS,
			MermaidScript:  scriptSrc(e.cfg.mermaidScript),
			ChartScript:    scriptSrc(e.cfg.chartScript),
			ContentWidthPX: g.ContentWidthPX(),
		})
		if err != nil {
			return nil, fmt.Errorf("preparing browser harness: %w", err)
		}
		e.browser = newRodBrowser(e.cfg.timeout, harness)
		if e.measurer == nil {
			e.measurer = e.browser
		}
		if e.diagrams == nil {
			e.diagrams = e.browser
		}
		if e.charts == nil {
			e.charts = rodCharts{b: e.browser}
		}
	}

	return e, nil
}

// scriptSrc turns a local script path into a file:// URL; the harness is
// loaded from a temp file, so relative sources would not resolve.
func scriptSrc(s string) string {
	if fileutil.IsURL(s) || strings.Contains(s, "://") {
		return s
	}
	if abs, err := filepath.Abs(s); err == nil {
		s = abs
	}
	p := filepath.ToSlash(s)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// Geometry returns the page geometry.
func (e *Editor) Geometry() PageGeometry {
	return e.cfg.geometry
}

// PageCSS returns the stylesheet used for paged output.
func (e *Editor) PageCSS() string {
	return e.pageCSS
}

// FlowCSS returns the stylesheet for the continuous (unpaged) view.
func (e *Editor) FlowCSS() string {
	return e.flowCSS
}

// SanitizeDiagram repairs common defects in Mermaid source. It never fails.
func (e *Editor) SanitizeDiagram(source string) string {
	return mermaid.Sanitize(source)
}

// DiagramKind returns the declared kind of Mermaid source, or "" if none.
func (e *Editor) DiagramKind(source string) string {
	return string(mermaid.DetectKind(source))
}

// MarkdownToHTML converts Markdown to an HTML fragment. Mermaid and chart
// fences become visual blocks, left unrendered.
func (e *Editor) MarkdownToHTML(ctx context.Context, markdown string) (out string, err error) {
	defer recoverInternal(&err)

	out, err = e.converter.ToHTML(ctx, markdown)
	if err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return out, nil
}

// RenderVisualBlocks renders every diagram and chart block of a document
// or fragment. Diagrams that fail to parse are replaced by a diagnostic
// block; chart failures become visible messages. Only engine failures
// (browser unavailable, cancellation) are returned.
func (e *Editor) RenderVisualBlocks(ctx context.Context, content string) (out string, err error) {
	defer recoverInternal(&err)

	root, isFragment, err := htmlutil.Parse(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	if err := e.renderer().Render(ctx, root); err != nil {
		return "", err
	}
	if isFragment {
		return htmlutil.RenderChildren(root)
	}
	return htmlutil.Render(root)
}

// InsertMarkdown converts markdown, appends it to the document body and
// renders the visual blocks of the result.
func (e *Editor) InsertMarkdown(ctx context.Context, documentHTML, markdown string) (out string, err error) {
	defer recoverInternal(&err)

	inserted, err := e.converter.ToHTML(ctx, markdown)
	if err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return e.RenderVisualBlocks(ctx, documentHTML+inserted)
}

// Paginate lays the document out on pages and renders the visual blocks
// of the produced pages.
func (e *Editor) Paginate(ctx context.Context, in PaginateInput) (res *PagedResult, err error) {
	defer recoverInternal(&err)

	root, _, err := htmlutil.Parse(in.HTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	if in.SourceDir != "" {
		if err := pipeline.RewriteTreePaths(root, in.SourceDir); err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	r := e.renderer()
	if in.RenderVisual {
		if err := r.Render(ctx, root); err != nil {
			return nil, err
		}
	}

	p := paginate.New(e.cfg.geometry.internal(), e.measurer)
	p.Tolerance = e.cfg.tolerance
	pages, err := p.Paginate(ctx, htmlutil.ContentRoot(root))
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		if err := r.Render(ctx, page.Body); err != nil {
			return nil, err
		}
	}

	return e.pagedResult(ctx, in.Title, pages)
}

func (e *Editor) pagedResult(ctx context.Context, title string, pages []*paginate.Page) (*PagedResult, error) {
	bodies, err := paginate.Bodies(pages)
	if err != nil {
		return nil, err
	}
	all, err := paginate.RenderPages(pages)
	if err != nil {
		return nil, err
	}
	return &PagedResult{
		Pages: bodies,
		HTML:  pipeline.PreviewDocument(ctx, title, all, e.pageCSS),
	}, nil
}

// renderer returns a visual block renderer whose diagram ids are unique
// across calls.
func (e *Editor) renderer() *visual.Renderer {
	prefix := uuid.NewString()[:8]
	return &visual.Renderer{
		Diagrams: e.diagrams,
		Charts:   e.charts,
		ID:       func(n int) string { return fmt.Sprintf("mmd-%s-%d", prefix, n) },
	}
}

// Close releases the headless browser, if one was started.
func (e *Editor) Close() error {
	if e.browser != nil {
		return e.browser.Close()
	}
	return nil
}

// recoverInternal turns a panic in a public method into an error.
func recoverInternal(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("internal error: %v", r)
	}
}
