package paginate

import (
	"strings"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// RenderPages serializes pages as consecutive div.page elements.
func RenderPages(pages []*Page) (string, error) {
	var sb strings.Builder
	for _, p := range pages {
		s, err := htmlutil.Render(p.Root)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// Bodies returns the inner HTML of each page body.
func Bodies(pages []*Page) ([]string, error) {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		s, err := htmlutil.RenderChildren(p.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
