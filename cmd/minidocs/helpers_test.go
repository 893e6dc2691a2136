package main

import (
	"bytes"
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	minidocs "github.com/alnah/go-minidocs"
)

type stubDiagrams struct{}

func (stubDiagrams) Parse(_ context.Context, src string) error {
	if strings.Contains(src, "BROKEN") {
		return &minidocs.ParseError{Message: "Parse error on line 2"}
	}
	return nil
}

func (stubDiagrams) Render(_ context.Context, id, _ string) (string, error) {
	return `<svg id="` + id + `"></svg>`, nil
}

type stubCharts struct{}

func (stubCharts) Render(context.Context, map[string]any) (string, error) {
	return "data:image/png;base64,AAAA", nil
}

// blockHeight measures 100px per element child of body.
func blockHeight(_ context.Context, body *html.Node) (float64, error) {
	var h float64
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			h += 100
		}
	}
	return h, nil
}

// testEnv returns an environment with captured output and engines that
// need no browser.
func testEnv(stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		EditorOptions: []minidocs.Option{
			minidocs.WithMeasurer(minidocs.MeasureFunc(blockHeight)),
			minidocs.WithDiagramEngine(stubDiagrams{}),
			minidocs.WithChartEngine(stubCharts{}),
		},
	}, &stdout, &stderr
}
