package paginate

import (
	"context"

	"golang.org/x/net/html"
)

// HeightTable is a Measurer that estimates page height from heights
// measured ahead of time, with no rendering in the loop.
//
// Heights are keyed by source node. The paginator reports each clone it
// makes through Track, so the clones inherit their source height. A node
// without a recorded height is the sum of its element children (block
// flow), or Fallback when it has none.
//
// A HeightTable is not safe for concurrent use.
type HeightTable struct {
	heights map[*html.Node]float64
	// Fallback sizes nodes with no recorded height and no element
	// children. Nil means zero.
	Fallback func(n *html.Node) float64
}

var (
	_ Measurer = (*HeightTable)(nil)
	_ Tracker  = (*HeightTable)(nil)
)

// NewHeightTable returns an empty table.
func NewHeightTable() *HeightTable {
	return &HeightTable{heights: make(map[*html.Node]float64)}
}

// Set records the rendered height of n.
func (t *HeightTable) Set(n *html.Node, h float64) {
	if t.heights == nil {
		t.heights = make(map[*html.Node]float64)
	}
	t.heights[n] = h
}

// Height returns the height of n.
func (t *HeightTable) Height(n *html.Node) float64 {
	if h, ok := t.heights[n]; ok {
		return h
	}
	var sum float64
	found := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			sum += t.Height(c)
			found = true
		}
	}
	if found {
		return sum
	}
	if t.Fallback != nil {
		return t.Fallback(n)
	}
	return 0
}

// Measure sums the heights of the children of body.
func (t *HeightTable) Measure(_ context.Context, body *html.Node) (float64, error) {
	var sum float64
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			sum += t.Height(c)
		}
	}
	return sum, nil
}

// Track copies recorded heights from src and its descendants onto the
// matching nodes of clone. Both trees must have the same shape.
func (t *HeightTable) Track(clone, src *html.Node) {
	if h, ok := t.heights[src]; ok {
		t.Set(clone, h)
	}
	for c, s := clone.FirstChild, src.FirstChild; c != nil && s != nil; c, s = c.NextSibling, s.NextSibling {
		t.Track(c, s)
	}
}
