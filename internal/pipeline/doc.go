// Package pipeline turns Markdown into HTML ready to insert into a document
// and wraps rendered pages into a standalone preview document.
//
// Stages:
//   - Markdown preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark, keeping mermaid and chart
//     fences as <pre><code class="language-..."> blocks for the visual
//     block renderer
//   - Relative image paths rewritten to file:// URLs before browser layout
//   - CSS injection into the preview document
//
// Diagram rendering and pagination are handled by internal/visual and
// internal/paginate.
package pipeline
