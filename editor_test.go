package minidocs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// ---------------------------------------------------------------------------
// TestNewEditor - Construction and validation
// ---------------------------------------------------------------------------

func TestNewEditor(t *testing.T) {
	t.Parallel()

	t.Run("injected engines start no browser", func(t *testing.T) {
		t.Parallel()

		ed := newTestEditor(t)
		defer ed.Close()

		if ed.browser != nil {
			t.Error("browser created although every engine was injected")
		}
		if !strings.Contains(ed.PageCSS(), "--page-width:210mm") {
			t.Error("page CSS lacks geometry variables")
		}
		if ed.Geometry() != A4() {
			t.Errorf("Geometry() = %+v, want A4", ed.Geometry())
		}
	})

	t.Run("missing engines use the browser lazily", func(t *testing.T) {
		t.Parallel()

		ed, err := NewEditor(WithMeasurer(MeasureFunc(dataHeight)))
		if err != nil {
			t.Fatal(err)
		}
		defer ed.Close()

		if ed.browser == nil || ed.browser.browser != nil {
			t.Error("browser should be prepared but not launched")
		}
		if !strings.Contains(ed.browser.harness, DefaultMermaidScript) {
			t.Error("harness does not load the mermaid script")
		}
	})

	t.Run("custom CSS appended", func(t *testing.T) {
		t.Parallel()

		ed := newTestEditor(t, WithCSS(".page-body{font-size:11pt}"))
		if !strings.HasSuffix(ed.PageCSS(), ".page-body{font-size:11pt}") {
			t.Error("custom CSS not appended last")
		}
		if !strings.Contains(ed.FlowCSS(), "max-width") || !strings.HasSuffix(ed.FlowCSS(), "11pt}") {
			t.Errorf("FlowCSS() = %q", ed.FlowCSS())
		}
	})

	t.Run("invalid geometry", func(t *testing.T) {
		t.Parallel()

		_, err := NewEditor(WithGeometry(PageGeometry{WidthMM: 100, HeightMM: 100, MarginMM: 60}))
		if !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("error = %v, want ErrInvalidGeometry", err)
		}
	})

	t.Run("invalid asset path", func(t *testing.T) {
		t.Parallel()

		_, err := NewEditor(WithAssetPath("/definitely/not/here"))
		if !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("error = %v, want ErrInvalidAssetPath", err)
		}
	})
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}

// ---------------------------------------------------------------------------
// TestEditor_RenderVisualBlocks - Diagram and chart rendering
// ---------------------------------------------------------------------------

func TestEditor_RenderVisualBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		exclude []string
	}{
		{
			name:    "diagram rendered",
			input:   `<p>x</p><pre><code class="language-mermaid">A --&gt; B</code></pre>`,
			want:    []string{`<p>x</p>`, `class="diagram"`, `data-diagram-id="mmd-`, "<svg"},
			exclude: []string{"<pre>", "<html>"},
		},
		{
			name:  "parse failure shows diagnostic",
			input: `<pre><code class="language-mermaid">A --&gt; B\nBROKEN</code></pre>`,
			want:  []string{`class="diagram-error"`, "Mermaid error: Parse error on line 2", "flowchart TD"},
		},
		{
			name:  "chart rendered",
			input: `<pre><code class="language-chart">{"type":"bar","data":{}}</code></pre>`,
			want:  []string{`class="chart-block"`, `src="data:image/png;base64,AAAA"`},
		},
		{
			name:  "funnel falls back to bar",
			input: `<pre><code class="language-chart">{"type":"funnel","data":{"datasets":[{"data":[3,2,1]}]}}</code></pre>`,
			want:  []string{`class="chart"`, "funnel plugin is not loaded"},
		},
		{
			name:  "invalid chart JSON left as typed",
			input: `<pre><code class="language-chart">{"type":</code></pre>`,
			want:  []string{`<pre><code class="language-chart">{&#34;type&#34;:</code></pre>`},
		},
		{
			name:  "full document keeps its shell",
			input: `<!DOCTYPE html><html><head><title>t</title></head><body><pre><code class="mermaid">A</code></pre></body></html>`,
			want:  []string{"<!DOCTYPE html>", "<title>t</title>", `class="diagram"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ed := newTestEditor(t)
			got, err := ed.RenderVisualBlocks(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("RenderVisualBlocks() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			for _, x := range tt.exclude {
				if strings.Contains(got, x) {
					t.Errorf("output should not contain %q:\n%s", x, got)
				}
			}
		})
	}
}

func TestEditor_RenderVisualBlocks_EngineFailure(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t, WithDiagramEngine(&fakeDiagrams{failAll: errBrowserGone}))
	_, err := ed.RenderVisualBlocks(context.Background(), `<pre><code class="language-mermaid">A</code></pre>`)
	if !errors.Is(err, errBrowserGone) {
		t.Errorf("error = %v, want errBrowserGone", err)
	}
}

func TestEditor_DiagramIDsUniqueAcrossCalls(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t)
	block := `<pre><code class="language-mermaid">A</code></pre>`
	a, _ := ed.RenderVisualBlocks(context.Background(), block)
	b, _ := ed.RenderVisualBlocks(context.Background(), block)
	if a == b {
		t.Error("two renders produced the same diagram ids")
	}
}

// ---------------------------------------------------------------------------
// TestEditor_Markdown - Conversion and insertion
// ---------------------------------------------------------------------------

func TestEditor_MarkdownToHTML(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t)
	got, err := ed.MarkdownToHTML(context.Background(), "## Plan\n\n```mermaid\nA --> B\n```")
	if err != nil {
		t.Fatalf("MarkdownToHTML() error = %v", err)
	}
	if !strings.Contains(got, `<h2 id="plan">Plan</h2>`) || !strings.Contains(got, "language-mermaid") {
		t.Errorf("MarkdownToHTML() = %q", got)
	}
}

func TestEditor_InsertMarkdown(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t)
	got, err := ed.InsertMarkdown(context.Background(), "<p>existing</p>", "```mermaid\nA --> B\n```")
	if err != nil {
		t.Fatalf("InsertMarkdown() error = %v", err)
	}
	if !strings.HasPrefix(got, "<p>existing</p>") {
		t.Errorf("existing content not kept first: %q", got)
	}
	if !strings.Contains(got, `class="diagram"`) {
		t.Errorf("inserted diagram not rendered: %q", got)
	}
}

func TestEditor_SanitizeDiagram(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t)
	if got := ed.SanitizeDiagram("A --> B"); got != "flowchart TD\nA --> B" {
		t.Errorf("SanitizeDiagram() = %q", got)
	}
	if got := ed.DiagramKind("sequenceDiagram\nA->>B: hi"); got != "sequenceDiagram" {
		t.Errorf("DiagramKind() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestEditor_Paginate - Page layout
// ---------------------------------------------------------------------------

func TestEditor_Paginate(t *testing.T) {
	t.Parallel()

	// A4 content height is about 971px: two 400px blocks fit per page.
	doc := `<p data-h="400">a</p><p data-h="400">b</p><p data-h="400">c</p>` +
		`<pre data-h="100"><code class="language-mermaid">A --&gt; B</code></pre>`

	ed := newTestEditor(t)
	res, err := ed.Paginate(context.Background(), PaginateInput{HTML: doc, Title: "Plan"})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}

	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	if !strings.Contains(res.Pages[0], ">a</p>") || !strings.Contains(res.Pages[0], ">b</p>") {
		t.Errorf("page 1 = %q", res.Pages[0])
	}
	if !strings.Contains(res.Pages[1], `class="diagram"`) {
		t.Errorf("visual blocks not rendered on pages: %q", res.Pages[1])
	}
	for _, want := range []string{"<!DOCTYPE html>", "<title>Plan</title>", `data-page="2"`, "--page-height:297mm"} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestEditor_Paginate_EmptyDocument(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t)
	res, err := ed.Paginate(context.Background(), PaginateInput{})
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(res.Pages) != 1 || res.Pages[0] != "" {
		t.Errorf("Pages = %q, want one empty page", res.Pages)
	}
}

func TestEditor_Paginate_RecoversPanic(t *testing.T) {
	t.Parallel()

	ed := newTestEditor(t, WithMeasurer(MeasureFunc(func(context.Context, *html.Node) (float64, error) {
		panic("measure exploded")
	})))
	_, err := ed.Paginate(context.Background(), PaginateInput{HTML: "<p>x</p>"})
	if err == nil || !strings.Contains(err.Error(), "internal error: measure exploded") {
		t.Errorf("error = %v, want recovered panic", err)
	}
}

func TestEditor_Paginate_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ed := newTestEditor(t)
	if _, err := ed.Paginate(ctx, PaginateInput{HTML: "<p>x</p>"}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPageGeometry(t *testing.T) {
	t.Parallel()

	g := A4()
	if got := g.ContentHeightPX(); got < 971 || got > 972 {
		t.Errorf("ContentHeightPX() = %v, want ~971.3", got)
	}
	if got := g.ContentWidthPX(); got < 642 || got > 643 {
		t.Errorf("ContentWidthPX() = %v, want ~642.5", got)
	}
	if err := (PageGeometry{WidthMM: -1, HeightMM: 10}).Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Validate() = %v, want ErrInvalidGeometry", err)
	}
}

func TestScriptSrc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{DefaultMermaidScript, DefaultMermaidScript},
		{"file:///opt/js/chart.umd.js", "file:///opt/js/chart.umd.js"},
		{"/opt/js/mermaid.min.js", "file:///opt/js/mermaid.min.js"},
	}
	for _, tt := range tests {
		if got := scriptSrc(tt.in); got != tt.want {
			t.Errorf("scriptSrc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := scriptSrc("vendor/mermaid.min.js"); !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/vendor/mermaid.min.js") {
		t.Errorf("relative path not made absolute: %q", got)
	}
}
