package mdprint

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdprint/internal/process"
	"github.com/alnah/go-mdprint/internal/render"
)

// Compile-time interface checks.
var (
	_ render.Browser = (*rodBrowser)(nil)
	_ render.Page    = (*rodPage)(nil)
)

// countScript returns the number of elements matching a selector.
const countScript = `(sel) => document.querySelectorAll(sel).length`

// rodBrowser is a headless Chrome process driven through go-rod. One is
// launched per conversion and killed when it ends.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// launchBrowser starts headless Chrome. Rod downloads Chromium on first run
// if none is found.
func launchBrowser(ctx context.Context, bin string, noSandbox bool) (render.Browser, error) {
	l := launcher.New().Context(ctx).Headless(true)

	// Pre-installed browser (Docker/containerized environments)
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox is required for CI and containers
	if noSandbox || envTrue("ROD_NO_SANDBOX") || envTrue("CI") || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		_ = killLauncher(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	return &rodBrowser{browser: b, launcher: l}, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (render.Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	return &rodPage{page: page}, nil
}

// Close shuts the browser down and kills what is left of its process tree.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if kerr := killLauncher(b.launcher); err == nil {
		err = kerr
	}
	return err
}

// killLauncher reaps the process group first; launcher.Kill only signals
// the main process.
func killLauncher(l *launcher.Launcher) error {
	err := process.KillGroup(l.PID())
	l.Kill()
	l.Cleanup()
	return err
}

// rodPage adapts a rod page to render.Page.
type rodPage struct {
	page *rod.Page
}

// Load navigates and waits for the load event and then for idle without any
// request in flight. The idle waiter is registered before navigation so
// requests issued during load are seen.
func (p *rodPage) Load(ctx context.Context, url string, idle time.Duration) error {
	page := p.page.Context(ctx)

	waitIdle := page.WaitRequestIdle(idle, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	waitIdle()

	// The idle waiter returns silently when ctx ends.
	return ctx.Err()
}

func (p *rodPage) Count(ctx context.Context, selector string) (int, error) {
	res, err := p.page.Context(ctx).Eval(countScript, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) PrintPDF(ctx context.Context, opts render.PrintOptions) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:          floatPtr(opts.PaperWidth),
		PaperHeight:         floatPtr(opts.PaperHeight),
		MarginTop:           floatPtr(opts.MarginTop),
		MarginBottom:        floatPtr(opts.MarginBottom),
		MarginLeft:          floatPtr(opts.MarginLeft),
		MarginRight:         floatPtr(opts.MarginRight),
		PrintBackground:     opts.PrintBackground,
		DisplayHeaderFooter: opts.HeaderTemplate != "" || opts.FooterTemplate != "",
		HeaderTemplate:      opts.HeaderTemplate,
		FooterTemplate:      opts.FooterTemplate,
	})
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// envTrue reports whether the variable is set to 1 or true.
func envTrue(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
