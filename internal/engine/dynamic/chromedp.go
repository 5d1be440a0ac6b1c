// internal/engine/dynamic/chromedp.go
package dynamic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/security"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/rs/zerolog/log"
)

const (
	releaseTimeout = 5 * time.Second
	idleWindow     = 500 * time.Millisecond
	idlePoll       = 100 * time.Millisecond
	targetAttr     = "data-sitescrape-target"
)

// errPageClosed is returned by operations on a page whose target went away
var errPageClosed = errors.New("target page closed")

// LaunchOptions configures the Chrome process
type LaunchOptions struct {
	ExecPath string // empty means FindChrome
	Headless bool
	Proxy    string // used when the launch ctx carries no proxy
}

// ChromeLauncher launches headless Chrome through chromedp
type ChromeLauncher struct {
	opts LaunchOptions
}

// NewChromeLauncher creates a launcher. Each Launch starts its own process.
func NewChromeLauncher(opts LaunchOptions) *ChromeLauncher {
	return &ChromeLauncher{opts: opts}
}

func (l *ChromeLauncher) allocatorOptions(proxyURL string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(DesktopUserAgent),
	}

	execPath := l.opts.ExecPath
	if execPath == "" {
		execPath = FindChrome()
	}
	if execPath != "" {
		opts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(execPath)}, opts...)
	}

	if l.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}
	return opts
}

// Launch starts a browser. The browser outlives ctx cancellation so that
// release is always explicit; ctx only bounds the startup itself.
func (l *ChromeLauncher) Launch(ctx context.Context) (Browser, error) {
	proxyURL := proxy.FromContext(ctx)
	if proxyURL == "" {
		proxyURL = l.opts.Proxy
	}

	base := context.WithoutCancel(ctx)
	allocCtx, allocCancel := chromedp.NewExecAllocator(base, l.allocatorOptions(proxyURL)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	log.Debug().Str("proxy", proxyURL).Msg("Chrome launched")

	return &chromeBrowser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

func (b *chromeBrowser) executor(ctx context.Context) context.Context {
	return cdp.WithExecutor(ctx, chromedp.FromContext(b.ctx).Browser)
}

// NewContext creates an isolated browser context
func (b *chromeBrowser) NewContext(ctx context.Context, opts ContextOptions) (BrowserContext, error) {
	cctx, cancel := context.WithTimeout(ctx, DefaultOperationTimeout)
	defer cancel()

	id, err := target.CreateBrowserContext().Do(b.executor(cctx))
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	return &chromeContext{browser: b, id: id, opts: opts}, nil
}

func (b *chromeBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type chromeContext struct {
	browser *chromeBrowser
	id      cdp.BrowserContextID
	opts    ContextOptions
}

// NewPage opens a tab inside the context and applies the context profile
func (c *chromeContext) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	pageCtx, pageCancel := chromedp.NewContext(c.browser.ctx, chromedp.WithExistingBrowserContext(c.id))

	p := &chromePage{
		ctx:      pageCtx,
		cancel:   pageCancel,
		timeout:  DefaultOperationTimeout,
		inflight: make(map[network.RequestID]struct{}),
		loaded:   make(chan struct{}, 1),
	}
	chromedp.ListenTarget(pageCtx, p.onEvent)

	headers := network.Headers{}
	for k, v := range c.opts.Headers {
		headers[k] = v
	}
	if c.opts.AcceptLanguage != "" {
		headers["Accept-Language"] = c.opts.AcceptLanguage
	}

	setup := []chromedp.Action{
		network.Enable(),
		emulation.SetUserAgentOverride(c.opts.UserAgent).WithAcceptLanguage(c.opts.AcceptLanguage),
		chromedp.EmulateViewport(int64(c.opts.ViewportWidth), int64(c.opts.ViewportHeight)),
	}
	if c.opts.IgnoreTLSErrors {
		setup = append(setup, security.SetIgnoreCertificateErrors(true))
	}
	if len(headers) > 0 {
		setup = append(setup, network.SetExtraHTTPHeaders(headers))
	}

	// The first Run attaches the tab and its event loop lives on the Run
	// context, so it must not carry a deadline. ctx only aborts the attach.
	stop := context.AfterFunc(ctx, pageCancel)
	err := chromedp.Run(pageCtx)
	stop()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = p.run(ctx, setup...)
	}
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	return p, nil
}

func (c *chromeContext) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	return target.DisposeBrowserContext(c.id).Do(c.browser.executor(ctx))
}

// chromePage implements Page over one chromedp target
type chromePage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	closed atomic.Bool
	nextID atomic.Int64

	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	loaded       chan struct{}
}

func (p *chromePage) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventDomContentEventFired:
		select {
		case p.loaded <- struct{}{}:
		default:
		}
	case *network.EventRequestWillBeSent:
		p.mu.Lock()
		p.inflight[e.RequestID] = struct{}{}
		p.lastActivity = time.Now()
		p.mu.Unlock()
	case *network.EventLoadingFinished:
		p.finish(e.RequestID)
	case *network.EventLoadingFailed:
		p.finish(e.RequestID)
	case *inspector.EventDetached, *inspector.EventTargetCrashed:
		p.closed.Store(true)
	}
}

func (p *chromePage) finish(id network.RequestID) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.lastActivity = time.Now()
	p.mu.Unlock()
}

// opCtx derives a chromedp context for one operation. It carries the
// caller's deadline, or the default timeout, and is cancelled with ctx.
func (p *chromePage) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	opCtx, cancel := context.WithTimeout(p.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.Closed() {
		return errPageClosed
	}
	opCtx, cancel := p.opCtx(ctx)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	// drain a signal left over from an earlier load
	select {
	case <-p.loaded:
	default:
	}

	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return fmt.Errorf("page load error %s", res.ErrorText)
		}
		select {
		case <-p.loaded:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))
}

// matchScript returns a JS expression evaluating to the elements matching sel
func matchScript(sel Selector) string {
	css, _ := json.Marshal(sel.CSS)
	text, _ := json.Marshal(sel.Text)
	return fmt.Sprintf(`(function(css, text) {
	const all = Array.from(document.querySelectorAll(css));
	if (!text) return all;
	const needle = text.toLowerCase();
	return all.filter(el => (el.innerText || el.textContent || '').toLowerCase().includes(needle));
})(%s, %s)`, css, text)
}

func (p *chromePage) Count(ctx context.Context, sel Selector) (int, error) {
	var n int
	err := p.run(ctx, chromedp.Evaluate(matchScript(sel)+".length", &n))
	return n, err
}

func (p *chromePage) Visible(ctx context.Context, sel Selector, index int) (bool, error) {
	script := fmt.Sprintf(`(function(el) {
	if (!el) return false;
	const rect = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	return rect.width > 0 && rect.height > 0 && style.visibility !== 'hidden' && style.display !== 'none';
})(%s[%d])`, matchScript(sel), index)

	var visible bool
	err := p.run(ctx, chromedp.Evaluate(script, &visible))
	return visible, err
}

// Click tags the element with a unique attribute so chromedp can dispatch
// a real mouse click on it.
func (p *chromePage) Click(ctx context.Context, sel Selector, index int) error {
	id := p.nextID.Add(1)
	script := fmt.Sprintf(`(function(el) {
	if (!el) return false;
	el.setAttribute(%q, %q);
	return true;
})(%s[%d])`, targetAttr, fmt.Sprint(id), matchScript(sel), index)

	var found bool
	if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no element %s[%d]", sel, index)
	}
	return p.run(ctx, chromedp.Click(fmt.Sprintf(`[%s="%d"]`, targetAttr, id), chromedp.ByQuery))
}

func (p *chromePage) Evaluate(ctx context.Context, script string, out any) error {
	return p.run(ctx, chromedp.Evaluate(script, out))
}

func (p *chromePage) WaitNetworkIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()
	for {
		if p.Closed() {
			return errPageClosed
		}
		p.mu.Lock()
		idle := len(p.inflight) == 0 && time.Since(p.lastActivity) >= idleWindow
		p.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *chromePage) Closed() bool {
	return p.closed.Load() || p.ctx.Err() != nil
}

func (p *chromePage) Close() error {
	if p.ctx.Err() != nil {
		return nil
	}
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	p.closed.Store(true)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
