package mermaid

import (
	"regexp"
	"strings"
)

// Kind is a diagram grammar named by the declaration line.
type Kind string

// Diagram kinds understood by the sanitizer. "graph" declarations are
// reported as KindFlowchart.
const (
	KindUnknown   Kind = ""
	KindFlowchart Kind = "flowchart"
	KindSequence  Kind = "sequenceDiagram"
	KindClass     Kind = "classDiagram"
	KindState     Kind = "stateDiagram-v2"
	KindJourney   Kind = "journey"
	KindGantt     Kind = "gantt"
	KindER        Kind = "erDiagram"
	KindPie       Kind = "pie"
	KindMindmap   Kind = "mindmap"
	KindQuadrant  Kind = "quadrantChart"
)

// Kinds lists every recognized kind in declaration-keyword order.
var Kinds = []Kind{
	KindFlowchart, KindSequence, KindClass, KindState, KindJourney,
	KindGantt, KindER, KindPie, KindMindmap, KindQuadrant,
}

// A declaration is the keyword alone on its line or followed by whitespace
// and something that is not an edge. "pie --> cake" is a flowchart edge
// from a node called pie, not a pie chart.
var declRe = regexp.MustCompile(`(?i)^[ \t]*(flowchart|graph|sequenceDiagram|classDiagram|stateDiagram-v2|journey|gantt|erDiagram|pie|mindmap|quadrantChart)(?:[ \t]*$|[ \t]+[^-=<>&~:| \t])`)

var kindByKeyword = func() map[string]Kind {
	m := map[string]Kind{"graph": KindFlowchart}
	for _, k := range Kinds {
		m[strings.ToLower(string(k))] = k
	}
	return m
}()

// declaration reports whether line declares a diagram kind, and which.
func declaration(line string) (Kind, bool) {
	m := declRe.FindStringSubmatch(line)
	if m == nil {
		return KindUnknown, false
	}
	return kindByKeyword[strings.ToLower(m[1])], true
}

// DetectKind returns the kind declared by the first non-blank line of text,
// skipping %% comments. It returns KindUnknown when that line is not a
// declaration.
func DetectKind(text string) Kind {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		k, _ := declaration(line)
		return k
	}
	return KindUnknown
}

// flowchartLike reports whether node-shape cleanups apply to kind. Text
// with no declaration becomes a flowchart.
func flowchartLike(k Kind) bool {
	return k == KindFlowchart || k == KindUnknown
}

// declarations returns the indexes of every declaration line.
func declarations(lines []string) []int {
	var idx []int
	for i, line := range lines {
		if _, ok := declaration(line); ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// resolveDeclarations decides which declaration line survives conflict
// resolution. It returns the index kept (-1 when there is none) and the
// indexes to delete.
//
// A quadrantChart line drops the flowchart lines sitting directly above it
// (only blank, %% or other declaration lines in between). Of what remains,
// the first declaration wins.
func resolveDeclarations(lines []string) (keep int, drop []int) {
	decls := declarations(lines)
	if len(decls) == 0 {
		return -1, nil
	}

	dropped := make(map[int]bool)
	for _, q := range decls {
		if k, _ := declaration(lines[q]); k != KindQuadrant {
			continue
		}
		for i := q - 1; i >= 0; i-- {
			k, isDecl := declaration(lines[i])
			if isDecl && k == KindFlowchart {
				dropped[i] = true
				continue
			}
			trimmed := strings.TrimSpace(lines[i])
			if isDecl || trimmed == "" || strings.HasPrefix(trimmed, "%%") {
				continue
			}
			break
		}
		break
	}

	keep = -1
	for _, i := range decls {
		switch {
		case dropped[i]:
			drop = append(drop, i)
		case keep < 0:
			keep = i
		default:
			drop = append(drop, i)
		}
	}
	return keep, drop
}

// effectiveKind is the kind that survives conflict resolution, so passes
// that run before resolution agree with a second run over their output.
func effectiveKind(text string) Kind {
	lines := strings.Split(text, "\n")
	keep, _ := resolveDeclarations(lines)
	if keep < 0 {
		return KindUnknown
	}
	k, _ := declaration(lines[keep])
	return k
}
