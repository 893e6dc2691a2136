package paginate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// tableParts is a source table taken apart for splitting.
type tableParts struct {
	src       *html.Node
	caption   *html.Node
	colgroups []*html.Node
	thead     *html.Node
	rows      []*html.Node // tbody rows and direct rows, then tfoot rows
}

func splitTable(table *html.Node) tableParts {
	parts := tableParts{src: table}
	var footRows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Caption:
			if parts.caption == nil {
				parts.caption = c
			}
		case atom.Colgroup:
			parts.colgroups = append(parts.colgroups, c)
		case atom.Thead:
			if parts.thead == nil {
				parts.thead = c
			}
		case atom.Tbody:
			parts.rows = append(parts.rows, childRows(c)...)
		case atom.Tfoot:
			footRows = append(footRows, childRows(c)...)
		case atom.Tr:
			parts.rows = append(parts.rows, c)
		}
	}
	parts.rows = append(parts.rows, footRows...)
	return parts
}

func childRows(group *html.Node) []*html.Node {
	var rows []*html.Node
	for r := group.FirstChild; r != nil; r = r.NextSibling {
		if htmlutil.IsElement(r, atom.Tr) {
			rows = append(rows, r)
		}
	}
	return rows
}

func hasRows(table *html.Node) bool {
	return len(splitTable(table).rows) > 0
}

// shell builds a page-local table: the source attributes, column groups,
// the caption on the first fragment only, and the header row group.
func (l *layout) shell(parts tableParts, first bool) (table, tbody *html.Node) {
	table = htmlutil.Element(atom.Table, "")
	table.Attr = append(table.Attr, parts.src.Attr...)
	if htmlutil.Attr(table, "style") == "" {
		htmlutil.SetAttr(table, "style", "width:100%;border-collapse:collapse")
	}
	for _, cg := range parts.colgroups {
		table.AppendChild(l.clone(cg))
	}
	if first && parts.caption != nil {
		table.AppendChild(l.clone(parts.caption))
	}
	if parts.thead != nil {
		table.AppendChild(l.clone(parts.thead))
	}
	tbody = htmlutil.Element(atom.Tbody, "")
	table.AppendChild(tbody)
	return table, tbody
}

// table places a table row by row. A row that overflows starts a new page
// with a fresh table carrying the header. A page-local table left with no
// rows is removed so no page ends on a bare header.
func (l *layout) table(src *html.Node) error {
	parts := splitTable(src)
	first := true

	table, tbody := l.shell(parts, first)
	l.cur.Body.AppendChild(table)

	for _, row := range parts.rows {
		if err := l.ctx.Err(); err != nil {
			return err
		}
		rc := l.clone(row)
		tbody.AppendChild(rc)

		ok, err := l.fits()
		if err != nil {
			return err
		}
		if ok || (rc.PrevSibling == nil && table.PrevSibling == nil) {
			first = false
			continue
		}

		tbody.RemoveChild(rc)
		if tbody.FirstChild == nil {
			l.cur.Body.RemoveChild(table)
		} else {
			first = false
		}
		l.newPage()
		table, tbody = l.shell(parts, first)
		l.cur.Body.AppendChild(table)
		tbody.AppendChild(rc)
		first = false
	}
	return nil
}
