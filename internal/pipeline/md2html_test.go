package pipeline

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// codeBlocks returns the <code> elements carrying class cls.
func codeBlocks(t *testing.T, fragment, cls string) []*html.Node {
	t.Helper()
	root, err := htmlutil.ParseFragment(fragment)
	if err != nil {
		t.Fatal(err)
	}
	return htmlutil.FindAll(root, func(n *html.Node) bool {
		return htmlutil.IsElement(n, atom.Code) && htmlutil.HasClass(n, cls)
	})
}

// ---------------------------------------------------------------------------
// TestGoldmarkConverter_ToHTML - Fragment output
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		want     []string
		exclude  []string
	}{
		{
			name:     "heading with id",
			markdown: "# Quarterly Review",
			want:     []string{`<h1 id="quarterly-review">Quarterly Review</h1>`},
		},
		{
			name:     "fragment has no document wrapper",
			markdown: "text",
			want:     []string{"<p>text</p>"},
			exclude:  []string{"<html", "<body", "<!DOCTYPE"},
		},
		{
			name:     "GFM table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:     []string{"<table>", "<th>a</th>", "<td>2</td>"},
		},
		{
			name:     "highlight syntax",
			markdown: "a ==key== point",
			want:     []string{"<mark>key</mark>"},
			exclude:  []string{MarkStartPlaceholder},
		},
		{
			name:     "raw HTML dropped",
			markdown: "<script>alert(1)</script>",
			exclude:  []string{"<script>"},
		},
		{
			name:     "ordinary code is highlighted",
			markdown: "```go\nfunc main() {}\n```",
			want:     []string{"chroma"},
		},
	}

	conv := NewGoldmarkConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.markdown)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToHTML() missing %q in %q", w, got)
				}
			}
			for _, x := range tt.exclude {
				if strings.Contains(got, x) {
					t.Errorf("ToHTML() should not contain %q: %q", x, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_VisualFences(t *testing.T) {
	t.Parallel()

	md := "intro\n\n```mermaid\nflowchart TD\n  A ==> B --> C\n```\n\n```chartjs\n{\"type\":\"bar\"}\n```\n"
	got, err := NewGoldmarkConverter().ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	diagrams := codeBlocks(t, got, "language-mermaid")
	if len(diagrams) != 1 {
		t.Fatalf("mermaid blocks = %d, want 1 in %q", len(diagrams), got)
	}
	if text := htmlutil.TextContent(diagrams[0]); text != "flowchart TD\n  A ==> B --> C\n" {
		t.Errorf("mermaid source = %q", text)
	}
	if strings.Contains(got, "<mark>") {
		t.Error("diagram edge turned into a highlight")
	}

	charts := codeBlocks(t, got, "language-chart")
	if len(charts) != 1 || htmlutil.TextContent(charts[0]) != "{\"type\":\"bar\"}\n" {
		t.Errorf("chart blocks = %d in %q", len(charts), got)
	}
}

func TestGoldmarkConverter_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter().ToHTML(ctx, "# x"); err != context.Canceled {
		t.Errorf("ToHTML() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestVisualLanguage - Fence language mapping
// ---------------------------------------------------------------------------

func TestVisualLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"mermaid":   "mermaid",
		" Mermaid ": "mermaid",
		"chart":     "chart",
		"chartjs":   "chart",
		"go":        "",
		"":          "",
	}
	for in, want := range tests {
		if got := VisualLanguage(in); got != want {
			t.Errorf("VisualLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
