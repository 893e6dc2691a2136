// Package mermaid repairs Mermaid diagram source before it reaches the
// diagram engine.
//
// Sanitize runs a fixed sequence of small text passes. Each pass is
// isolated: a pass that panics leaves its input unchanged and the
// pipeline carries on with the next one.
package mermaid

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultDeclaration is prepended to text that declares no diagram kind.
const DefaultDeclaration = "flowchart TD"

type pass struct {
	name string
	fn   func(string) string
}

// Order matters: later passes assume the normalization of earlier ones.
var passes = []pass{
	{"bom-and-newlines", normalizeNewlines},
	{"glyphs", normalizeGlyphs},
	{"tabs", expandTabs},
	{"dashes", normalizeDashes},
	{"literal-newlines", literalNewlines},
	{"triple-hyphen", protectTripleHyphens},
	{"label-parens", escapeLabelParens},
	{"lines", cleanLines},
	{"invisible-tails", stripInvisibleTails},
	{"gantt-labels", commentBareGanttLabels},
	{"subgraph-balance", balanceSubgraphs},
	{"kind-conflicts", resolveKindConflicts},
	{"quadrant", fixQuadrant},
	{"declaration", ensureDeclaration},
}

// Sanitize returns text repaired for the Mermaid parser. It never fails;
// empty input yields empty output. Sanitize is idempotent.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	for _, p := range passes {
		text = applyPass(p, text)
	}
	return text
}

func applyPass(p pass, in string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = in
		}
	}()
	return p.fn(in)
}

// mapLines applies fn to every line of text.
func mapLines(text string, fn func(string) string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = fn(line)
	}
	return strings.Join(lines, "\n")
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "%%")
}

func normalizeNewlines(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func normalizeGlyphs(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u00A0', r == '\u1680', r == '\u180E',
			r >= '\u2000' && r <= '\u200B',
			r == '\u202F', r == '\u205F', r == '\u3000', r == '\uFEFF':
			return ' '
		case r == '\u200C', r == '\u200D', r == '\u200E', r == '\u200F', r == '\u061C':
			return -1
		case r == '\u2795', r == '\uFE62', r == '\uFF0B':
			return '+'
		case r == '\uFE59', r == '\uFF08':
			return '('
		case r == '\uFE5A', r == '\uFF09':
			return ')'
		}
		return r
	}, s)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "  ")
}

const emDash = '\u2014'

// normalizeDashes turns dash and minus variants into '-'. An em dash inside
// a label is kept: it is what protectTripleHyphens writes.
func normalizeDashes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch r {
		case '\n':
			depth = 0
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
		}
		if (r >= '\u2010' && r <= '\u2015') || r == '\u2212' {
			if r != emDash || depth == 0 {
				r = '-'
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func literalNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "<br/>")
}

type labelRule struct {
	re          *regexp.Regexp
	left, right string
}

var hyphenRules = []labelRule{
	{regexp.MustCompile(`\[([^\[\]\n]*?)---([^\[\]\n]*?)\]`), "[", "]"},
	{regexp.MustCompile(`\(([^()\n]*?)---([^()\n]*?)\)`), "(", ")"},
}

// protectTripleHyphens rewrites "---" inside [..] and (..) labels to an em
// dash so the parser does not read an edge.
func protectTripleHyphens(s string) string {
	return mapLines(s, func(line string) string {
		if isComment(line) {
			return line
		}
		for _, rule := range hyphenRules {
			for {
				next := rule.re.ReplaceAllString(line, rule.left+"${1}\u2014${2}"+rule.right)
				if next == line {
					break
				}
				line = next
			}
		}
		return line
	})
}

var (
	bracketLabelRe = regexp.MustCompile(`\[([^\[\]\n]*)\]`)
	braceLabelRe   = regexp.MustCompile(`\{([^{}\n]*)\}`)
)

// escapeLabelParens replaces parentheses inside [..] and {..} labels with
// character references; the parser reads them as port markers otherwise.
// A label wrapped whole in parentheses is a shape ("[(db)]") and keeps its
// outer pair.
func escapeLabelParens(s string) string {
	escape := func(left, right string) func(string) string {
		return func(m string) string {
			inner := m[1 : len(m)-1]
			if len(inner) >= 2 && inner[0] == '(' && inner[len(inner)-1] == ')' {
				return left + "(" + escapeParens(inner[1:len(inner)-1]) + ")" + right
			}
			return left + escapeParens(inner) + right
		}
	}
	return mapLines(s, func(line string) string {
		if isComment(line) {
			return line
		}
		line = bracketLabelRe.ReplaceAllStringFunc(line, escape("[", "]"))
		return braceLabelRe.ReplaceAllStringFunc(line, escape("{", "}"))
	})
}

func escapeParens(s string) string {
	return strings.NewReplacer("(", "&#40;", ")", "&#41;").Replace(s)
}

var (
	lineCommentRe   = regexp.MustCompile(`(^|[^:])//.*$`)
	endKeywordRe    = regexp.MustCompile(`(?i)^([ \t]*end)\b.*$`)
	danglingColonRe = regexp.MustCompile(`([\])])\s*:\s*$`)
)

// continuations may follow a closed node shape on the same line.
var continuations = []string{
	"--", "-.", "==", "~~~", "<", "&", ":", "o--", "x--",
}

var continuationKeywords = []string{"style", "class", "click", "linkStyle"}

func cleanLines(s string) string {
	nodeTails := flowchartLike(effectiveKind(s))
	return mapLines(s, func(line string) string {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		line = strings.TrimRightFunc(lineCommentRe.ReplaceAllString(line, "${1}"), unicode.IsSpace)
		if endKeywordRe.MatchString(line) {
			line = endKeywordRe.ReplaceAllString(line, "${1}")
		}
		if nodeTails && !isComment(line) {
			line = truncateNodeTail(line)
		}
		return danglingColonRe.ReplaceAllString(line, "${1}")
	})
}

// truncateNodeTail cuts a line after the first closing ] or ) that is
// followed by whitespace and then something other than a connector or a
// styling keyword. Brackets inside double quotes are ignored.
func truncateNodeTail(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' {
			quoted = !quoted
			continue
		}
		if quoted || (c != ']' && c != ')') {
			continue
		}
		j := i + 1
		for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
			j++
		}
		if j == i+1 || j == len(line) {
			continue
		}
		if !isContinuation(line[j:]) {
			return line[:i+1]
		}
	}
	return line
}

func isContinuation(rest string) bool {
	for _, c := range continuations {
		if strings.HasPrefix(rest, c) {
			return true
		}
	}
	for _, kw := range continuationKeywords {
		if strings.HasPrefix(rest, kw) && (len(rest) == len(kw) || !isWordByte(rest[len(kw)])) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

var invisibleTailRe = regexp.MustCompile(`([\])])[ \t]*[\x{200C}\x{200D}\x{200E}\x{200F}\x{061C}]*[ \t]*$`)

func stripInvisibleTails(s string) string {
	return mapLines(s, func(line string) string {
		return invisibleTailRe.ReplaceAllString(line, "${1}")
	})
}

var ganttDirectiveRe = regexp.MustCompile(`(?i)^(gantt|title|dateFormat|axisFormat|excludes|includes|todayMarker|tickInterval|weekday|inclusiveEndDates|topAxis|section|accTitle|accDescr)\b`)

// commentBareGanttLabels comments out gantt lines that carry no task data.
// Declaration lines are left for conflict resolution.
func commentBareGanttLabels(s string) string {
	if effectiveKind(s) != KindGantt {
		return s
	}
	return mapLines(s, func(line string) string {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") ||
			ganttDirectiveRe.MatchString(trimmed) || strings.Contains(trimmed, ":") {
			return line
		}
		if _, ok := declaration(line); ok {
			return line
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		return indent + "%% " + line[len(indent):]
	})
}

var (
	subgraphRe = regexp.MustCompile(`(?i)^[ \t]*subgraph\b`)
	endRe      = regexp.MustCompile(`(?i)^[ \t]*end\b`)
)

func balanceSubgraphs(s string) string {
	open, closed := 0, 0
	for _, line := range strings.Split(s, "\n") {
		switch {
		case subgraphRe.MatchString(line):
			open++
		case endRe.MatchString(line):
			closed++
		}
	}
	if open <= closed {
		return s
	}
	return s + "\n" + strings.Repeat("end\n", open-closed)
}

func resolveKindConflicts(s string) string {
	lines := strings.Split(s, "\n")
	_, drop := resolveDeclarations(lines)
	if len(drop) == 0 {
		return s
	}
	skip := make(map[int]bool, len(drop))
	for _, i := range drop {
		skip[i] = true
	}
	kept := lines[:0:0]
	for i, line := range lines {
		if !skip[i] {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

var (
	quadrantAxisRe  = regexp.MustCompile(`(?i)^[ \t]*([xy]-axis)[ \t]+([^"\n]+?)[ \t]*-->[ \t]*([^"\n]+?)[ \t]*$`)
	quadrantPointRe = regexp.MustCompile(`^[ \t]*("?[^":\n]+?"?)[ \t]*:[ \t]*([0-9]+(?:\.[0-9]+)?)[ \t]*,[ \t]*([0-9]+(?:\.[0-9]+)?)[ \t]*$`)
)

// fixQuadrant quotes axis endpoints and brackets point coordinates.
func fixQuadrant(s string) string {
	if effectiveKind(s) != KindQuadrant {
		return s
	}
	return mapLines(s, func(line string) string {
		if m := quadrantAxisRe.FindStringSubmatch(line); m != nil {
			return strings.ToLower(m[1]) + ` "` + strings.TrimSpace(m[2]) + `" --> "` + strings.TrimSpace(m[3]) + `"`
		}
		if m := quadrantPointRe.FindStringSubmatch(line); m != nil {
			label := strings.TrimSpace(strings.Trim(m[1], `"`))
			return `"` + label + `" : [` + m[2] + ", " + m[3] + "]"
		}
		return line
	})
}

// ensureDeclaration makes the declaration the first line after any front
// matter and %% comments, prepending DefaultDeclaration when there is none.
func ensureDeclaration(s string) string {
	lines := strings.Split(s, "\n")
	start := frontMatterEnd(lines)
	decls := declarations(lines)

	if len(decls) == 0 {
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:start]...)
		out = append(out, DefaultDeclaration)
		return strings.Join(append(out, lines[start:]...), "\n")
	}

	d := decls[0]
	for i := start; i < d; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		decl := lines[d]
		out := make([]string, 0, len(lines))
		out = append(out, lines[:start]...)
		out = append(out, decl)
		out = append(out, lines[start:d]...)
		return strings.Join(append(out, lines[d+1:]...), "\n")
	}
	return s
}

// frontMatterEnd returns the index of the first line after a leading
// "---" front matter block, or 0 when there is none.
func frontMatterEnd(lines []string) int {
	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first == len(lines) || strings.TrimSpace(lines[first]) != "---" {
		return 0
	}
	for i := first + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i + 1
		}
	}
	return 0
}
