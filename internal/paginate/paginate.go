// Package paginate lays the top-level nodes of an HTML document out on
// fixed-height pages.
//
// Nodes are placed greedily in document order: each one is appended to the
// current page and measured; when the page no longer fits, the node moves
// to a fresh page. Only tables are split, row by row, with the header row
// group repeated on every page. A node taller than a page is placed alone
// on its page and overflows.
package paginate

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// Measurer returns the rendered height, in CSS pixels, of a page body laid
// out at the content width. It must not modify body.
type Measurer interface {
	Measure(ctx context.Context, body *html.Node) (float64, error)
}

// Tracker is implemented by measurers that key heights by node: the
// paginator reports every clone together with the source node it copies.
type Tracker interface {
	Track(clone, src *html.Node)
}

// Page is one output page: Root is the div.page container, Body the
// div.page-body holding the content.
type Page struct {
	Index int
	Root  *html.Node
	Body  *html.Node
}

// Paginator splits documents into pages.
type Paginator struct {
	Geometry  Geometry
	Tolerance float64
	Measurer  Measurer
}

// New returns a Paginator with DefaultTolerance.
func New(g Geometry, m Measurer) *Paginator {
	return &Paginator{Geometry: g, Tolerance: DefaultTolerance, Measurer: m}
}

// Paginate lays out the children of src. The source tree is not modified.
// At least one page is always returned.
func (p *Paginator) Paginate(ctx context.Context, src *html.Node) ([]*Page, error) {
	if p.Measurer == nil {
		return nil, fmt.Errorf("paginate: no measurer")
	}
	l := &layout{p: p, ctx: ctx}
	l.newPage()

	for child := src.FirstChild; child != nil; child = child.NextSibling {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch {
		case child.Type == html.CommentNode, htmlutil.IsBlankText(child):
			continue
		case isPageBreak(child):
			if l.cur.Body.FirstChild != nil {
				l.newPage()
			}
		case htmlutil.IsElement(child, atom.Table) && hasRows(child):
			err = l.table(child)
		default:
			err = l.node(child)
		}
		if err != nil {
			return nil, err
		}
	}
	return l.pages, nil
}

func isPageBreak(n *html.Node) bool {
	return n.Type == html.ElementNode && htmlutil.HasClass(n, "page-break")
}

type layout struct {
	p     *Paginator
	ctx   context.Context
	pages []*Page
	cur   *Page
}

func (l *layout) newPage() {
	root := htmlutil.Element(atom.Div, "page")
	htmlutil.SetAttr(root, "data-page", strconv.Itoa(len(l.pages)+1))
	body := htmlutil.Element(atom.Div, "page-body")
	root.AppendChild(body)
	l.cur = &Page{Index: len(l.pages), Root: root, Body: body}
	l.pages = append(l.pages, l.cur)
}

func (l *layout) clone(src *html.Node) *html.Node {
	c := htmlutil.Clone(src)
	if t, ok := l.p.Measurer.(Tracker); ok {
		t.Track(c, src)
	}
	return c
}

func (l *layout) fits() (bool, error) {
	h, err := l.p.Measurer.Measure(l.ctx, l.cur.Body)
	if err != nil {
		return false, fmt.Errorf("measuring page %d: %w", l.cur.Index+1, err)
	}
	return h <= l.p.Geometry.ContentHeightPX()+l.p.Tolerance, nil
}

// node places an atomic node. The node moves to a new page on overflow
// unless it is already alone on its page.
func (l *layout) node(src *html.Node) error {
	c := l.clone(src)
	l.cur.Body.AppendChild(c)

	ok, err := l.fits()
	if err != nil || ok || c.PrevSibling == nil {
		return err
	}
	l.cur.Body.RemoveChild(c)
	l.newPage()
	l.cur.Body.AppendChild(c)
	return nil
}
