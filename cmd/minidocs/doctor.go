package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/config"
	"github.com/alnah/go-minidocs/internal/fileutil"
)

// scriptHeadTimeout bounds the HEAD request for a remote script.
const scriptHeadTimeout = 5 * time.Second

// Check states.
const (
	stateOK    = "ok"
	stateWarn  = "warn"
	stateError = "error"
)

// doctorReport is what `minidocs doctor` checks, in the order printed.
type doctorReport struct {
	Status  string        `json:"status"` // "ready", "warnings", "errors"
	Config  string        `json:"config"` // file in use, or "defaults"
	Browser browserCheck  `json:"browser"`
	Scripts []scriptCheck `json:"scripts"`
	Editor  editorCheck   `json:"editor"`
	Env     envCheck      `json:"environment"`
	Notes   []string      `json:"notes,omitempty"`
}

// browserCheck covers the Chrome that measures pages and renders blocks.
type browserCheck struct {
	State   string `json:"state"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
	Detail  string `json:"detail,omitempty"`
}

// scriptCheck reports whether a renderer script loaded by the harness
// resolves.
type scriptCheck struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Remote bool   `json:"remote"`
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

// editorCheck reports the page geometry and whether an Editor (stylesheets
// and harness) can be built from the resolved config.
type editorCheck struct {
	State           string  `json:"state"`
	ContentWidthPX  float64 `json:"content_width_px"`
	ContentHeightPX float64 `json:"content_height_px"`
	Detail          string  `json:"detail,omitempty"`
}

// envCheck holds the platform and sandbox-related signals.
type envCheck struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Container string `json:"container,omitempty"` // detecting signal
	CI        bool   `json:"ci"`
}

// doctor runs the checks. Fields are swapped in tests.
type doctor struct {
	client   *http.Client
	lookPath func() (string, bool)
}

func newDoctor() *doctor {
	return &doctor{
		client:   &http.Client{Timeout: scriptHeadTimeout},
		lookPath: launcher.LookPath,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code:
// 0 when minidocs can render (warnings included), 1 otherwise.
func runDoctorCmd(flags *commandFlags, env *Environment) int {
	report := newDoctor().run(context.Background(), flags)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func (d *doctor) run(ctx context.Context, flags *commandFlags) *doctorReport {
	r := &doctorReport{Config: "defaults"}

	cfg, err := resolveConfig(flags, loadEnvConfig())
	switch {
	case err != nil:
		r.Notes = append(r.Notes, fmt.Sprintf("Config rejected, checking defaults instead: %v", err))
		cfg = config.DefaultConfig()
		applyEnvConfig(loadEnvConfig(), cfg)
	case flags.common.config != "":
		r.Config = flags.common.config
	case os.Getenv("MINIDOCS_CONFIG") != "":
		r.Config = os.Getenv("MINIDOCS_CONFIG")
	}

	r.Env = detectEnv()
	r.Browser = d.checkBrowser(r.Env)
	r.Scripts = []scriptCheck{
		d.checkScript(ctx, "mermaid", cfg.Renderer.MermaidScript),
		d.checkScript(ctx, "chart.js", cfg.Renderer.ChartScript),
	}
	r.Editor = checkEditor(cfg)

	states := []string{r.Browser.State, r.Editor.State}
	for _, s := range r.Scripts {
		states = append(states, s.State)
	}
	r.Status = "ready"
	for _, s := range states {
		if s == stateError {
			r.Status = "errors"
			break
		}
		if s == stateWarn || len(r.Notes) > 0 {
			r.Status = "warnings"
		}
	}
	return r
}

// checkBrowser locates Chrome the way the editor's launcher does.
func (d *doctor) checkBrowser(env envCheck) browserCheck {
	b := browserCheck{State: stateOK, Sandbox: !sandboxDisabled(os.Getenv("ROD_NO_SANDBOX"))}

	path := os.Getenv("ROD_BROWSER_BIN")
	if path == "" {
		var found bool
		if path, found = d.lookPath(); !found {
			b.State = stateError
			b.Detail = "Chrome/Chromium not found; install it or set ROD_BROWSER_BIN"
			return b
		}
	}
	if !fileutil.FileExists(path) {
		b.State = stateError
		b.Detail = "no browser at " + path
		return b
	}
	b.Path = path

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		b.State = stateWarn
		b.Detail = fmt.Sprintf("could not read version: %v", err)
	} else {
		b.Version = strings.TrimSpace(string(out))
	}

	if b.Sandbox && (env.Container != "" || env.CI) {
		b.State = stateWarn
		b.Detail = "sandboxed Chrome usually fails in containers and CI; set ROD_NO_SANDBOX=1"
	}
	return b
}

// checkScript resolves a script the way the harness will load it: remote
// sources must answer a HEAD request, local ones must exist.
func (d *doctor) checkScript(ctx context.Context, name, src string) scriptCheck {
	c := scriptCheck{Name: name, Source: src, Remote: fileutil.IsURL(src), State: stateOK}

	if !c.Remote {
		path := strings.TrimPrefix(src, "file://")
		if !fileutil.FileExists(path) {
			c.State = stateError
			c.Detail = "file not found: " + path
		}
		return c
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, src, nil)
	if err != nil {
		c.State = stateError
		c.Detail = err.Error()
		return c
	}
	resp, err := d.client.Do(req)
	if err != nil {
		// The browser may still reach it through its own proxy settings.
		c.State = stateWarn
		c.Detail = fmt.Sprintf("unreachable: %v", err)
		return c
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		c.State = stateError
		c.Detail = "server answered " + resp.Status
	}
	return c
}

// checkEditor builds an Editor from the config without starting the
// browser, which validates geometry, asset overrides and the harness.
func checkEditor(cfg *config.Config) editorCheck {
	g := minidocs.PageGeometry{
		WidthMM:  cfg.Page.WidthMM,
		HeightMM: cfg.Page.HeightMM,
		MarginMM: cfg.Page.MarginMM,
		PxPerMM:  cfg.Page.PxPerMM,
	}
	c := editorCheck{State: stateOK, ContentWidthPX: g.ContentWidthPX(), ContentHeightPX: g.ContentHeightPX()}

	opts := []minidocs.Option{minidocs.WithGeometry(g)}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, minidocs.WithAssetPath(cfg.Assets.BasePath))
	}
	ed, err := minidocs.NewEditor(opts...)
	if err != nil {
		c.State = stateError
		c.Detail = err.Error()
		return c
	}
	_ = ed.Close()
	return c
}

func detectEnv() envCheck {
	e := envCheck{OS: runtime.GOOS, Arch: runtime.GOARCH}
	_, e.Container = isContainer()
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			e.CI = true
			break
		}
	}
	return e
}

// sandboxDisabled mirrors the values the browser launcher accepts.
func sandboxDisabled(v string) bool {
	return v == "1" || v == "true"
}

// isContainer returns the first container signal found.
func isContainer() (bool, string) {
	if os.Getenv("MINIDOCS_CONTAINER") == "1" {
		return true, "MINIDOCS_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

var stateLabels = map[string]string{stateOK: "[OK]   ", stateWarn: "[WARN] ", stateError: "[ERROR]"}

// printDoctorReport writes the human-readable report.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "minidocs doctor")
	fmt.Fprintf(w, "Config: %s\n\n", r.Config)

	b := r.Browser
	fmt.Fprintln(w, "Browser (page measurement, diagram and chart rendering)")
	switch {
	case b.Path == "":
		fmt.Fprintf(w, "  %s %s\n", stateLabels[b.State], b.Detail)
	default:
		fmt.Fprintf(w, "  %s %s\n", stateLabels[b.State], b.Path)
		if b.Version != "" {
			fmt.Fprintf(w, "          %s\n", b.Version)
		}
		if b.Sandbox {
			fmt.Fprintln(w, "          sandbox enabled")
		} else {
			fmt.Fprintln(w, "          sandbox disabled (ROD_NO_SANDBOX)")
		}
		if b.Detail != "" {
			fmt.Fprintf(w, "          %s\n", b.Detail)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Harness scripts")
	for _, s := range r.Scripts {
		fmt.Fprintf(w, "  %s %-8s %s\n", stateLabels[s.State], s.Name, s.Source)
		if s.Detail != "" {
			fmt.Fprintf(w, "          %s\n", s.Detail)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Editor")
	fmt.Fprintf(w, "  %s content area %.1f x %.1f px\n", stateLabels[r.Editor.State], r.Editor.ContentWidthPX, r.Editor.ContentHeightPX)
	if r.Editor.Detail != "" {
		fmt.Fprintf(w, "          %s\n", r.Editor.Detail)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container != "" {
		fmt.Fprintf(w, ", container (%s)", r.Env.Container)
	}
	if r.Env.CI {
		fmt.Fprint(w, ", CI")
	}
	fmt.Fprintln(w)

	for _, n := range r.Notes {
		fmt.Fprintf(w, "Note: %s\n", n)
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
