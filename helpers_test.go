package minidocs

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// dataHeight measures a body by summing the data-h attribute of the
// outermost elements carrying one.
func dataHeight(_ context.Context, body *html.Node) (float64, error) {
	var sum float64
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if v := htmlutil.Attr(c, "data-h"); v != "" {
				h, _ := strconv.ParseFloat(v, 64)
				sum += h
				continue
			}
			walk(c)
		}
	}
	walk(body)
	return sum, nil
}

// fakeDiagrams rejects sources containing "BROKEN" and renders the rest as
// a stub SVG.
type fakeDiagrams struct {
	mu      sync.Mutex
	renders int
	failAll error
}

func (f *fakeDiagrams) Parse(_ context.Context, source string) error {
	if f.failAll != nil {
		return f.failAll
	}
	if strings.Contains(source, "BROKEN") {
		return &ParseError{Message: "Parse error on line 2: unexpected BROKEN"}
	}
	return nil
}

func (f *fakeDiagrams) Render(_ context.Context, id, _ string) (string, error) {
	f.mu.Lock()
	f.renders++
	f.mu.Unlock()
	return `<svg id="` + id + `"><g></g></svg>`, nil
}

type fakeCharts struct{}

func (fakeCharts) Render(_ context.Context, cfg map[string]any) (string, error) {
	if cfg["type"] == "funnel" {
		return "", &ChartError{Message: `"funnel" is not a registered controller.`}
	}
	return "data:image/png;base64,AAAA", nil
}

var errBrowserGone = errors.New("browser gone")

// newTestEditor returns an Editor with fake engines and data-h measurement.
func newTestEditor(t interface{ Fatal(...any) }, opts ...Option) *Editor {
	base := []Option{
		WithMeasurer(MeasureFunc(dataHeight)),
		WithDiagramEngine(&fakeDiagrams{}),
		WithChartEngine(fakeCharts{}),
	}
	ed, err := NewEditor(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return ed
}
