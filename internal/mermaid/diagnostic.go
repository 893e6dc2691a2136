package mermaid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-minidocs/internal/hints"
)

// PortParseSignature is the fragment of a Mermaid parse error raised when
// parentheses inside a label are read as a port marker.
const PortParseSignature = "got 'PS'"

var retryLabelRe = regexp.MustCompile(`\[([^\]]*)\]`)

// IsPortParseError reports whether msg is the port-marker parse failure
// that EscapeBracketParens can fix.
func IsPortParseError(msg string) bool {
	return strings.Contains(msg, PortParseSignature)
}

// EscapeBracketParens replaces parentheses inside every [..] label with
// character references. It is broader than the sanitizer pass: labels may
// span lines and contain '['.
func EscapeBracketParens(text string) string {
	return retryLabelRe.ReplaceAllStringFunc(text, func(m string) string {
		return "[" + escapeParens(m[1:len(m)-1]) + "]"
	})
}

// FormatDiagnostic builds the text shown in place of a diagram that failed
// to parse: the engine message, the sanitized source with line numbers, and
// a hint chosen by diagram kind.
func FormatDiagnostic(errMsg, sanitized string) string {
	var sb strings.Builder
	sb.WriteString("Mermaid error: ")
	sb.WriteString(errMsg)
	sb.WriteString("\n\n")

	for i, line := range strings.Split(sanitized, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%3d \u2502 %s", i+1, line)
	}

	sb.WriteByte('\n')
	if DetectKind(sanitized) == KindGantt {
		sb.WriteString(hints.ForGanttTasks())
	} else {
		sb.WriteString(hints.ForDiagramSyntax())
	}
	return sb.String()
}
