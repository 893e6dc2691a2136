package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-minidocs/internal/htmlutil"
)

// RewriteRelativePaths converts relative img[src] and a[href] paths in an
// HTML document or fragment to file:// URLs under sourceDir, so the
// browser harness can load local images before measuring page heights.
// If sourceDir is empty, returns the HTML unchanged.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	root, _, err := htmlutil.Parse(htmlContent)
	if err != nil {
		return "", err
	}
	if err := RewriteTreePaths(root, sourceDir); err != nil {
		return "", err
	}
	return htmlutil.Render(root)
}

// RewriteTreePaths rewrites relative paths in place on a parsed tree.
// Paths escaping sourceDir, URLs, anchors and absolute paths are left as is.
func RewriteTreePaths(root *html.Node, sourceDir string) error {
	if sourceDir == "" {
		return nil
	}
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}

	for _, n := range htmlutil.FindAll(root, func(n *html.Node) bool {
		return htmlutil.IsElement(n, atom.Img) || htmlutil.IsElement(n, atom.A)
	}) {
		key := "src"
		if n.DataAtom == atom.A {
			key = "href"
		}
		rewriteAttr(n, key, absSourceDir)
	}
	return nil
}

func rewriteAttr(n *html.Node, key, sourceDir string) {
	val := htmlutil.Attr(n, key)
	if !isRelativePath(val) {
		return
	}
	abs := filepath.Join(sourceDir, val)
	if !isPathUnderDir(abs, sourceDir) {
		return
	}
	htmlutil.SetAttr(n, key, pathToFileURL(abs))
}

var nonRelativePrefixes = []string{"http://", "https://", "file://", "data:", "//", "#", "mailto:"}

// isRelativePath reports whether path is a local relative path.
func isRelativePath(path string) bool {
	if path == "" || filepath.IsAbs(path) {
		return false
	}
	for _, p := range nonRelativePrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

// isPathUnderDir checks if absPath is dir or below it.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
