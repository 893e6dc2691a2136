package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeAsset creates dir/sub/name under a temp base and returns the base.
func writeAsset(t *testing.T, base, sub, name, content string) {
	t.Helper()
	dir := filepath.Join(base, sub)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateAssetName - Name safety
// ---------------------------------------------------------------------------

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"pages", false},
		{"my-style_2", false},
		{"", true},
		{"../etc", true},
		{"a/b", true},
		{`a\b`, true},
		{"pages.css", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAssetName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("error = %v, want ErrInvalidAssetName", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEmbeddedLoader - Built-in assets
// ---------------------------------------------------------------------------

func TestEmbeddedLoader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		load     func() (string, error)
		contains string
		wantErr  error
	}{
		{"pages style", func() (string, error) { return LoadStyle(PagesStyleName) }, ".page-body", nil},
		{"editor style", func() (string, error) { return LoadStyle(EditorStyleName) }, "max-width", nil},
		{"harness template", func() (string, error) { return LoadTemplate(HarnessTemplateName) }, "window.minidocs", nil},
		{"unknown style", func() (string, error) { return LoadStyle("nope") }, "", ErrStyleNotFound},
		{"unknown template", func() (string, error) { return LoadTemplate("nope") }, "", ErrTemplateNotFound},
		{"invalid name", func() (string, error) { return LoadStyle("../x") }, "", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("content missing %q", tt.contains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader - Custom asset directory
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing"), file} {
		if _, err := NewFilesystemLoader(path); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", path, err)
		}
	}
	if _, err := NewFilesystemLoader(t.TempDir()); err != nil {
		t.Errorf("NewFilesystemLoader(tempdir) error = %v", err)
	}
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "brand.css", ".page{}")
	writeAsset(t, base, "templates", "harness.html", "<html>custom</html>")

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}

	if got, err := loader.LoadStyle("brand"); err != nil || got != ".page{}" {
		t.Errorf("LoadStyle() = %q, %v", got, err)
	}
	if got, err := loader.LoadTemplate("harness"); err != nil || got != "<html>custom</html>" {
		t.Errorf("LoadTemplate() = %q, %v", got, err)
	}
	if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want ErrStyleNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	base, outside := t.TempDir(), t.TempDir()
	writeAsset(t, outside, "", "secret.css", "secret")
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(base, "styles", "leak.css")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("leak"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(leak) error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestAssetResolver - Custom-first fallback
// ---------------------------------------------------------------------------

func TestAssetResolver(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "pages.css", "/* custom pages */")

	r, err := NewAssetResolver(base)
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasCustomLoader() {
		t.Error("HasCustomLoader() = false")
	}

	if got, _ := r.LoadStyle(PagesStyleName); got != "/* custom pages */" {
		t.Errorf("custom style not preferred: %q", got)
	}
	if got, err := r.LoadStyle(EditorStyleName); err != nil || !strings.Contains(got, "max-width") {
		t.Errorf("fallback to embedded failed: %q, %v", got, err)
	}
	if got, err := r.LoadTemplate(HarnessTemplateName); err != nil || !strings.Contains(got, "#measure") {
		t.Errorf("template fallback failed: %v", err)
	}
	if _, err := r.LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("validation error should not fall back, got %v", err)
	}
}

func TestAssetResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver("")
	if err != nil {
		t.Fatal(err)
	}
	if r.HasCustomLoader() {
		t.Error("HasCustomLoader() = true")
	}
	if _, err := NewAssetResolver(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("error = %v, want ErrInvalidBasePath", err)
	}
}

// ---------------------------------------------------------------------------
// TestRenderHarness - Browser harness document
// ---------------------------------------------------------------------------

func TestRenderHarness(t *testing.T) {
	t.Parallel()

	got, err := RenderHarness(NewEmbeddedLoader(), HarnessData{
		CSS:            ".page-body{color:red}",
		MermaidScript:  "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js",
		ContentWidthPX: 640,
	})
	if err != nil {
		t.Fatalf("RenderHarness() error = %v", err)
	}

	for _, want := range []string{
		".page-body{color:red}",
		`<script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>`,
		"width: 640px",
		`id="scratch"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("harness missing %q", want)
		}
	}
	if strings.Contains(got, "chart.umd") {
		t.Error("chart script included without being configured")
	}
}

func TestRenderHarness_BadTemplate(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "templates", "harness.html", "{{.Nope")
	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RenderHarness(loader, HarnessData{}); !errors.Is(err, ErrHarnessRender) {
		t.Errorf("error = %v, want ErrHarnessRender", err)
	}
}

func TestPageVars(t *testing.T) {
	t.Parallel()

	got := PageVars(210, 297, 20)
	want := ":root{--page-width:210mm;--page-height:297mm;--page-margin:20mm}\n"
	if got != want {
		t.Errorf("PageVars() = %q, want %q", got, want)
	}
}
