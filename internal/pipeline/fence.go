package pipeline

import (
	"bytes"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/util"
)

// visualLanguages are fence languages left as plain code blocks for the
// visual block renderer.
var visualLanguages = map[string]string{
	"mermaid": "mermaid",
	"chart":   "chart",
	"chartjs": "chart",
}

// VisualLanguage reports the canonical visual block language for a fence
// info string, or "" when the fence is ordinary code.
func VisualLanguage(lang string) string {
	return visualLanguages[strings.TrimSpace(strings.ToLower(lang))]
}

// visualFenceWrapper writes the <pre><code> wrapper of every fenced block
// that chroma did not highlight. Mermaid and chart fences get a canonical
// lowercase language class so the visual renderer finds them.
func visualFenceWrapper() highlighting.WrapperRenderer {
	return func(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
		if ctx.Highlighted() {
			return
		}
		if !entering {
			_, _ = w.WriteString("</code></pre>\n")
			return
		}

		lang, _ := ctx.Language()
		_, _ = w.WriteString("<pre><code")
		if visual := VisualLanguage(string(lang)); visual != "" {
			_, _ = w.WriteString(` class="language-` + visual + `"`)
		} else if len(bytes.TrimSpace(lang)) > 0 {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(lang))
			_, _ = w.WriteString(`"`)
		}
		_, _ = w.WriteString(">")
	}
}
