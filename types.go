package minidocs

import (
	"context"
	"time"

	"golang.org/x/net/html"

	"github.com/alnah/go-minidocs/internal/paginate"
	"github.com/alnah/go-minidocs/internal/visual"
)

// PageGeometry describes the physical page. Content height and width are
// the page size minus the margin on both sides, converted at PxPerMM.
type PageGeometry struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	PxPerMM  float64 // 0 = 96/25.4 (CSS pixels)
}

// A4 returns the default geometry: 210x297 mm with a 20 mm margin.
func A4() PageGeometry {
	return PageGeometry{WidthMM: 210, HeightMM: 297, MarginMM: 20, PxPerMM: paginate.PxPerMM}
}

func (g PageGeometry) internal() paginate.Geometry {
	return paginate.Geometry(g)
}

// ContentHeightPX returns the usable page height in CSS pixels.
func (g PageGeometry) ContentHeightPX() float64 { return g.internal().ContentHeightPX() }

// ContentWidthPX returns the usable page width in CSS pixels.
func (g PageGeometry) ContentWidthPX() float64 { return g.internal().ContentWidthPX() }

// Validate checks that the geometry leaves a positive content area.
func (g PageGeometry) Validate() error { return g.internal().Validate() }

// Document is the record held by an editing session.
type Document struct {
	ID          string
	Title       string
	ContentHTML string
}

// PaginateInput is the document handed to Editor.Paginate.
type PaginateInput struct {
	HTML      string // document or fragment
	Title     string // preview document title
	SourceDir string // resolves relative image paths (optional)
	// RenderVisual renders diagram and chart blocks before layout, so
	// their real size is measured.
	RenderVisual bool
}

// PagedResult is the output of pagination.
type PagedResult struct {
	Pages []string // inner HTML of each page body
	HTML  string   // standalone preview document with the page stylesheet
}

// Measurer returns the rendered height, in CSS pixels, of a page body laid
// out at the content width. It must not modify body.
type Measurer interface {
	Measure(ctx context.Context, body *html.Node) (float64, error)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(ctx context.Context, body *html.Node) (float64, error)

// Measure calls f.
func (f MeasureFunc) Measure(ctx context.Context, body *html.Node) (float64, error) {
	return f(ctx, body)
}

// DiagramEngine validates and renders Mermaid source. Content problems
// are reported as *ParseError.
type DiagramEngine interface {
	Parse(ctx context.Context, source string) error
	Render(ctx context.Context, id, source string) (svg string, err error)
}

// ChartEngine draws a Chart.js configuration and returns an image URL.
// Content problems are reported as *ChartError.
type ChartEngine interface {
	Render(ctx context.Context, cfg map[string]any) (imageURL string, err error)
}

// ParseError is a diagram rejected by the DiagramEngine.
type ParseError = visual.ParseError

// ChartError is a chart the ChartEngine failed to draw.
type ChartError = visual.ChartError

// Option configures an Editor.
type Option func(*Editor)

// editorConfig holds internal configuration for Editor.
type editorConfig struct {
	timeout       time.Duration
	geometry      PageGeometry
	tolerance     float64
	mermaidScript string
	chartScript   string
	assetPath     string
	css           string
}

// Defaults.
const (
	defaultTimeout       = 30 * time.Second
	DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"
	DefaultChartScript   = "https://cdn.jsdelivr.net/npm/chart.js@4/dist/chart.umd.min.js"
)

// WithTimeout sets the browser timeout per operation.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("minidocs: WithTimeout duration must be positive")
	}
	return func(e *Editor) { e.cfg.timeout = d }
}

// WithGeometry sets the page geometry. It is validated by NewEditor.
func WithGeometry(g PageGeometry) Option {
	return func(e *Editor) { e.cfg.geometry = g }
}

// WithTolerance sets the pixel slack allowed when testing if a page fits.
func WithTolerance(px float64) Option {
	return func(e *Editor) { e.cfg.tolerance = px }
}

// WithScripts sets the Mermaid and Chart.js script URLs loaded by the
// browser. An empty URL keeps the default.
func WithScripts(mermaidURL, chartURL string) Option {
	return func(e *Editor) {
		if mermaidURL != "" {
			e.cfg.mermaidScript = mermaidURL
		}
		if chartURL != "" {
			e.cfg.chartScript = chartURL
		}
	}
}

// WithAssetPath overrides embedded stylesheets and the browser harness with
// files from dir (styles/*.css, templates/*.html).
func WithAssetPath(dir string) Option {
	return func(e *Editor) { e.cfg.assetPath = dir }
}

// WithCSS appends CSS to the page stylesheet.
func WithCSS(css string) Option {
	return func(e *Editor) { e.cfg.css = css }
}

// WithMeasurer replaces browser measurement.
func WithMeasurer(m Measurer) Option {
	return func(e *Editor) { e.measurer = m }
}

// WithDiagramEngine replaces the browser Mermaid engine.
func WithDiagramEngine(d DiagramEngine) Option {
	return func(e *Editor) { e.diagrams = d }
}

// WithChartEngine replaces the browser Chart.js engine.
func WithChartEngine(c ChartEngine) Option {
	return func(e *Editor) { e.charts = c }
}
