package minidocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"

	"github.com/alnah/go-minidocs/internal/chart"
	"github.com/alnah/go-minidocs/internal/fileutil"
	"github.com/alnah/go-minidocs/internal/htmlutil"
	"github.com/alnah/go-minidocs/internal/process"
)

// Compile-time interface checks.
var (
	_ Measurer      = (*rodBrowser)(nil)
	_ DiagramEngine = (*rodBrowser)(nil)
	_ ChartEngine   = rodCharts{}
)

// rodBrowser drives one headless Chrome tab holding the harness page. It
// measures page bodies, renders Mermaid diagrams and draws Chart.js charts.
// Rod downloads Chromium on first run if none is found.
type rodBrowser struct {
	mu       sync.Mutex
	timeout  time.Duration
	harness  string
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cleanup  func()
	scripts  struct{ mermaid, chart bool }
}

func newRodBrowser(timeout time.Duration, harness string) *rodBrowser {
	return &rodBrowser{timeout: timeout, harness: harness}
}

// ensureBrowser lazily launches and connects to the browser.
func (b *rodBrowser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	b.launcher = l

	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// ensurePage opens the harness page from a temp file and records which
// renderer scripts loaded.
func (b *rodBrowser) ensurePage(ctx context.Context) (*rod.Page, error) {
	if b.page != nil {
		return b.page.Context(ctx), nil
	}
	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(b.harness, "html")
	if err != nil {
		return nil, err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	if err := page.Context(ctx).Timeout(b.opTimeout(ctx)).WaitLoad(); err != nil {
		_ = page.Close()
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	res, err := page.Context(ctx).Eval(`() => window.minidocs.scripts()`)
	if err != nil {
		_ = page.Close()
		cleanup()
		return nil, fmt.Errorf("%w: harness not initialized: %v", ErrPageLoad, err)
	}
	b.scripts.mermaid = res.Value.Get("mermaid").Bool()
	b.scripts.chart = res.Value.Get("chart").Bool()

	b.page, b.cleanup = page, cleanup
	return page.Context(ctx), nil
}

// opTimeout is the context deadline if sooner, otherwise the configured
// timeout.
func (b *rodBrowser) opTimeout(ctx context.Context) time.Duration {
	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	return timeout
}

// eval runs a harness function with the page lock held.
func (b *rodBrowser) eval(ctx context.Context, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	page, err := b.ensurePage(ctx)
	if err != nil {
		return nil, err
	}
	return page.Timeout(b.opTimeout(ctx)).Eval(js, args...)
}

// Measure lays body out inside the harness #measure container.
func (b *rodBrowser) Measure(ctx context.Context, body *html.Node) (float64, error) {
	inner, err := htmlutil.RenderChildren(body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMeasure, err)
	}
	res, err := b.eval(ctx, `(html) => window.minidocs.measure(html)`, inner)
	if err != nil {
		return 0, b.engineError(ErrMeasure, err)
	}
	return res.Value.Num(), nil
}

// Parse validates diagram source. A rejected diagram yields *ParseError.
func (b *rodBrowser) Parse(ctx context.Context, source string) error {
	res, err := b.eval(ctx, `(src) => window.minidocs.parseDiagram(src)`, source)
	if err != nil {
		return b.engineError(ErrRender, err)
	}
	if msg := res.Value.Str(); msg != "" {
		return &ParseError{Message: msg}
	}
	return nil
}

// Render returns the SVG markup of a diagram. Exceptions thrown by
// mermaid.render are reported as *ParseError.
func (b *rodBrowser) Render(ctx context.Context, id, source string) (string, error) {
	res, err := b.eval(ctx, `(id, src) => window.minidocs.renderDiagram(id, src)`, id, source)
	if err != nil {
		var evalErr *rod.EvalError
		if errors.As(err, &evalErr) && b.scripts.mermaid {
			return "", &ParseError{Message: exceptionMessage(evalErr)}
		}
		return "", b.engineError(ErrRender, err)
	}
	return res.Value.Str(), nil
}

// renderChart draws cfg on a canvas and returns a PNG data URL.
func (b *rodBrowser) renderChart(ctx context.Context, cfg chart.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", &ChartError{Message: err.Error()}
	}
	res, err := b.eval(ctx, `(cfg, h) => window.minidocs.renderChart(cfg, h)`, string(data), chart.Height)
	if err != nil {
		return "", b.engineError(ErrRender, err)
	}
	if !b.scripts.chart {
		return "", fmt.Errorf("%w: Chart.js", ErrScriptLoad)
	}
	if msg := res.Value.Get("error").Str(); msg != "" {
		return "", &ChartError{Message: msg}
	}
	return res.Value.Get("url").Str(), nil
}

// engineError wraps a browser failure, reporting a missing renderer
// script as ErrScriptLoad.
func (b *rodBrowser) engineError(sentinel, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrBrowserConnect) || errors.Is(err, ErrPageCreate) || errors.Is(err, ErrPageLoad) {
		return err
	}
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) && strings.Contains(exceptionMessage(evalErr), "is not loaded") {
		return fmt.Errorf("%w: %s", ErrScriptLoad, exceptionMessage(evalErr))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// exceptionMessage extracts the JavaScript error text from an EvalError.
func exceptionMessage(e *rod.EvalError) string {
	if e.RuntimeExceptionDetails == nil {
		return "javascript evaluation failed"
	}
	msg := e.Text
	if e.Exception != nil && e.Exception.Description != "" {
		msg = e.Exception.Description
	}
	// Drop the JS stack, keep the message lines.
	if i := strings.Index(msg, "\n    at "); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimPrefix(strings.TrimPrefix(msg, "Error: "), "Uncaught ")
}

// Close releases the harness page and the browser, then kills the
// Chrome process group.
func (b *rodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cleanup != nil {
		b.cleanup()
		b.cleanup = nil
	}
	b.page = nil

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		process.KillProcessGroup(b.launcher.PID())
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// rodCharts exposes the chart half of rodBrowser as a ChartEngine; the
// Render name is taken by the diagram engine.
type rodCharts struct{ b *rodBrowser }

func (c rodCharts) Render(ctx context.Context, cfg map[string]any) (string, error) {
	return c.b.renderChart(ctx, cfg)
}
