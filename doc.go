// Package minidocs is the backend of a rich-text document editor whose
// documents embed Mermaid diagrams and Chart.js charts.
//
// # Quick Start
//
//	ed, err := minidocs.NewEditor()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ed.Close()
//
//	out, err := ed.RenderVisualBlocks(ctx, `<pre><code class="language-mermaid">A --> B</code></pre>`)
//
// # Visual Blocks
//
// A visual block is a <pre><code> element classed "language-mermaid" or
// "language-chart". Diagram source is sanitized first (see
// SanitizeDiagram), then parsed and rendered to inline SVG. A diagram that
// still fails to parse becomes a <pre class="diagram-error"> block showing
// the parser message, the numbered source and a hint. Charts become PNG
// images; a funnel chart falls back to a horizontal bar chart when the
// funnel plugin is missing.
//
// # Pagination
//
// Paginate lays the top-level nodes of a document out on fixed-height
// pages in document order, splitting tables by row and repeating their
// header on each page:
//
//	res, err := ed.Paginate(ctx, minidocs.PaginateInput{HTML: doc, RenderVisual: true})
//	// res.Pages: inner HTML per page; res.HTML: standalone preview.
//
// Heights come from a headless Chrome (go-rod) by default. WithMeasurer
// swaps in any other Measurer.
//
// # Sessions
//
// A Session keeps the editor state explicit: the open document, paged
// mode and the last pages. Edits in paged mode are paginated after a 300ms
// quiet period.
//
// # Parallel Processing
//
// EditorPool hands out editors, each with its own browser:
//
//	pool := minidocs.NewEditorPool(minidocs.ResolvePoolSize(0))
//	defer pool.Close()
//	ed, err := pool.Acquire(ctx)
//	defer pool.Release(ed)
package minidocs
