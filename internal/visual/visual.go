// Package visual renders the diagram and chart blocks of an HTML document.
//
// A block is a <pre><code> element whose class names the language:
// "language-mermaid" (or exactly "mermaid") for diagrams and
// "language-chart" (or exactly "chart") for Chart.js configurations.
// Rendering failures end up as visible text in the document; only engine
// failures unrelated to the block content are returned.
package visual

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-minidocs/internal/chart"
	"github.com/alnah/go-minidocs/internal/htmlutil"
	"github.com/alnah/go-minidocs/internal/mermaid"
)

// ParseError is a diagram the engine refused. Message is the engine text.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// ChartError is a chart the engine failed to draw.
type ChartError struct {
	Message string
}

func (e *ChartError) Error() string { return e.Message }

// DiagramEngine validates and renders Mermaid source. Parse and Render
// report content problems as *ParseError.
type DiagramEngine interface {
	Parse(ctx context.Context, source string) error
	Render(ctx context.Context, id, source string) (svg string, err error)
}

// ChartEngine draws a chart configuration and returns an image URL
// (typically a data: URL). Content problems are reported as *ChartError.
type ChartEngine interface {
	Render(ctx context.Context, cfg chart.Config) (imageURL string, err error)
}

// Renderer replaces diagram and chart blocks with rendered output. A nil
// engine leaves its block type untouched.
type Renderer struct {
	Diagrams DiagramEngine
	Charts   ChartEngine
	// ID names the n-th diagram (1-based). Defaults to "mmd-<n>".
	ID func(n int) string
}

type blockKind int

const (
	blockNone blockKind = iota
	blockDiagram
	blockChart
)

func classify(code *html.Node) blockKind {
	class := strings.ToLower(htmlutil.Attr(code, "class"))
	switch {
	case strings.Contains(class, "language-chart") || strings.TrimSpace(class) == "chart":
		return blockChart
	case strings.Contains(class, "language-mermaid") || strings.TrimSpace(class) == "mermaid":
		return blockDiagram
	}
	return blockNone
}

// Blocks returns the code elements of root that hold visual blocks.
func Blocks(root *html.Node) []*html.Node {
	return htmlutil.FindAll(root, func(n *html.Node) bool {
		return htmlutil.IsElement(n, atom.Code) && htmlutil.IsElement(n.Parent, atom.Pre) &&
			classify(n) != blockNone
	})
}

// Render renders every visual block under root in place. Charts are
// handled before diagrams.
func (r *Renderer) Render(ctx context.Context, root *html.Node) error {
	var charts, diagrams []*html.Node
	for _, code := range Blocks(root) {
		switch classify(code) {
		case blockChart:
			charts = append(charts, code)
		case blockDiagram:
			diagrams = append(diagrams, code)
		}
	}

	if r.Charts != nil {
		for _, code := range charts {
			if err := r.renderChart(ctx, code); err != nil {
				return err
			}
		}
	}

	if r.Diagrams != nil {
		for i, code := range diagrams {
			if err := r.renderDiagram(ctx, code, r.id(i+1)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) id(n int) string {
	if r.ID != nil {
		return r.ID(n)
	}
	return fmt.Sprintf("mmd-%d", n)
}

func (r *Renderer) renderDiagram(ctx context.Context, code *html.Node, id string) error {
	pre := code.Parent
	source := mermaid.Sanitize(htmlutil.TextContent(code))

	svg, err := r.parseAndRender(ctx, id, source)
	var perr *ParseError
	switch {
	case err == nil:
		div := htmlutil.Element(atom.Div, "diagram")
		htmlutil.SetAttr(div, "data-diagram-id", id)
		if err := htmlutil.AppendHTML(div, svg); err != nil {
			return fmt.Errorf("parsing rendered diagram %s: %w", id, err)
		}
		htmlutil.Replace(pre, div)
		return nil
	case errors.As(err, &perr):
		htmlutil.Replace(pre, diagnosticBlock(mermaid.FormatDiagnostic(perr.Message, source)))
		return nil
	default:
		return fmt.Errorf("rendering diagram %s: %w", id, err)
	}
}

// parseAndRender validates source first; on the port-marker failure it
// retries once with every bracket label escaped.
func (r *Renderer) parseAndRender(ctx context.Context, id, source string) (string, error) {
	err := r.Diagrams.Parse(ctx, source)
	var perr *ParseError
	if errors.As(err, &perr) && mermaid.IsPortParseError(perr.Message) {
		escaped := mermaid.EscapeBracketParens(source)
		if err := r.Diagrams.Parse(ctx, escaped); err != nil {
			return "", err
		}
		return r.Diagrams.Render(ctx, id, escaped)
	}
	if err != nil {
		return "", err
	}
	return r.Diagrams.Render(ctx, id, source)
}

func diagnosticBlock(text string) *html.Node {
	pre := htmlutil.Element(atom.Pre, "diagram-error")
	htmlutil.SetAttr(pre, "style", "color:#c00;white-space:pre-wrap")
	pre.AppendChild(htmlutil.Text(text))
	return pre
}

func (r *Renderer) renderChart(ctx context.Context, code *html.Node) error {
	cfg, err := chart.Parse(htmlutil.TextContent(code))
	if err != nil {
		return nil // not a chart yet; leave the block as typed
	}

	wrap := htmlutil.Element(atom.Div, "chart-block")
	htmlutil.SetAttr(wrap, "style", "margin:8px 0")
	htmlutil.Replace(code.Parent, wrap)

	url, err := r.Charts.Render(ctx, cfg)
	var cerr *ChartError
	switch {
	case err == nil:
		wrap.AppendChild(chartImage(url))
		return nil
	case !errors.As(err, &cerr):
		return fmt.Errorf("rendering chart: %w", err)
	case !chart.IsMissingFunnelController(cfg, cerr):
		wrap.AppendChild(chartMessage("Chart error: "+cerr.Message, "color:#c00"))
		return nil
	}

	url, err = r.Charts.Render(ctx, chart.FunnelAsBar(cfg))
	switch {
	case err == nil:
		wrap.AppendChild(chartImage(url))
		wrap.AppendChild(chartMessage(chart.FallbackNotice, "font-size:12px;color:#884400;margin-top:4px"))
		return nil
	case errors.As(err, &cerr):
		wrap.AppendChild(chartMessage("Chart error (fallback): "+cerr.Message, "color:#c00"))
		return nil
	default:
		return fmt.Errorf("rendering chart fallback: %w", err)
	}
}

func chartImage(url string) *html.Node {
	img := htmlutil.Element(atom.Img, "chart")
	htmlutil.SetAttr(img, "src", url)
	htmlutil.SetAttr(img, "height", fmt.Sprint(chart.Height))
	htmlutil.SetAttr(img, "alt", "chart")
	return img
}

func chartMessage(text, style string) *html.Node {
	div := htmlutil.Element(atom.Div, "chart-message")
	htmlutil.SetAttr(div, "style", style)
	div.AppendChild(htmlutil.Text(text))
	return div
}
