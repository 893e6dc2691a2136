// Package fileutil holds the path helpers shared by the editor, its
// browser and the CLI.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadExtension is returned for a temp file extension that is empty or
// carries a path component.
var ErrBadExtension = errors.New("invalid temp file extension")

// WriteTempFile writes content to a new minidocs-*.ext file in the system
// temp directory. The browser loads its harness from such a file. The
// returned cleanup removes it.
func WriteTempFile(content, ext string) (path string, cleanup func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}

	f, err := os.CreateTemp("", "minidocs-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, err = f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, cleanup, nil
}

// FileExists reports whether path is an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsFilePath reports whether a config reference is a path ("./work.yaml",
// "/etc/minidocs.yaml") rather than a bare name ("work").
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsURL reports whether a script source is fetched over HTTP(S) rather
// than read from disk.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SiblingPath returns input with its extension replaced by suffix, in the
// same directory ("docs/a.html", ".pages.html" -> "docs/a.pages.html").
// When outDir is set the file lands there instead.
func SiblingPath(input, suffix, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + suffix
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
