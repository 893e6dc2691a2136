package assets

import (
	"bytes"
	"fmt"
	"html/template"
)

// HarnessData feeds the browser harness template.
type HarnessData struct {
	CSS            string
	MermaidScript  string
	ChartScript    string
	ContentWidthPX float64
}

// PageVars returns a :root rule setting the --page-* variables used by the
// pages stylesheet.
func PageVars(widthMM, heightMM, marginMM float64) string {
	return fmt.Sprintf(":root{--page-width:%gmm;--page-height:%gmm;--page-margin:%gmm}\n",
		widthMM, heightMM, marginMM)
}

// RenderHarness loads the harness template through loader and executes it.
func RenderHarness(loader AssetLoader, data HarnessData) (string, error) {
	src, err := loader.LoadTemplate(HarnessTemplateName)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(HarnessTemplateName).Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHarnessRender, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		CSS            template.CSS
		MermaidScript  string
		ChartScript    string
		ContentWidthPX float64
	}{
		CSS:            template.CSS(data.CSS), // #nosec G203 -- stylesheet comes from trusted assets
		MermaidScript:  data.MermaidScript,
		ChartScript:    data.ChartScript,
		ContentWidthPX: data.ContentWidthPX,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHarnessRender, err)
	}
	return buf.String(), nil
}
