package mermaid

import (
	"strings"
	"testing"
)

func TestIsPortParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{"Parse error on line 2:\n...Expecting 'SQE', got 'PS'", true},
		{"Lexical error on line 1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPortParseError(tt.msg); got != tt.want {
			t.Errorf("IsPortParseError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestEscapeBracketParens(t *testing.T) {
	t.Parallel()

	got := EscapeBracketParens("A[f(x)] --> B[g(y)]\nC(keep)")
	want := "A[f&#40;x&#41;] --> B[g&#40;y&#41;]\nC(keep)"
	if got != want {
		t.Errorf("EscapeBracketParens() = %q, want %q", got, want)
	}
}

func TestFormatDiagnostic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    string
		wantLines []string
		wantHint  string
	}{
		{
			name:      "flowchart hint",
			source:    "flowchart TD\nA-->",
			wantLines: []string{"  1 │ flowchart TD", "  2 │ A-->"},
			wantHint:  "subgraph",
		},
		{
			name:      "gantt hint",
			source:    "gantt\nTask",
			wantLines: []string{"  1 │ gantt", "  2 │ Task"},
			wantHint:  "colon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := FormatDiagnostic("Parse error on line 2", tt.source)
			if !strings.HasPrefix(got, "Mermaid error: Parse error on line 2\n\n") {
				t.Errorf("missing message header in %q", got)
			}
			for _, line := range tt.wantLines {
				if !strings.Contains(got, line) {
					t.Errorf("missing listing line %q in %q", line, got)
				}
			}
			if !strings.Contains(got, "hint: ") || !strings.Contains(got, tt.wantHint) {
				t.Errorf("missing %q hint in %q", tt.wantHint, got)
			}
		})
	}
}
