package dynamic

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// fakePage scripts a page for driver tests
type fakePage struct {
	mu sync.Mutex

	navErr   error
	navBlock bool
	html     string
	urls     []string

	counts   map[string]int
	hidden   map[string]bool
	clickErr map[string]error
	clicks   []string

	metrics    []pageMetrics
	metricsErr error
	scrolls    int

	closeAfterScroll bool
	closed           bool
	closeErr         error
	idleErr          error
	onIdle           func()
	events           *[]string
}

func newFakePage(html string) *fakePage {
	return &fakePage{
		html:       html,
		counts:     map[string]int{},
		hidden:     map[string]bool{},
		clickErr:   map[string]error{},
		metricsErr: fmt.Errorf("no metrics scripted"),
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if p.navBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.navErr
}

func (p *fakePage) Count(_ context.Context, sel Selector) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[sel.String()], nil
}

func (p *fakePage) Visible(_ context.Context, sel Selector, _ int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.hidden[sel.String()], nil
}

func (p *fakePage) Click(_ context.Context, sel Selector, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.clickErr[sel.String()]; err != nil {
		return err
	}
	p.clicks = append(p.clicks, fmt.Sprintf("%s[%d]", sel, index))
	return nil
}

func (p *fakePage) Evaluate(_ context.Context, script string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch script {
	case scrollScript:
		p.scrolls++
		if p.closeAfterScroll {
			p.closed = true
		}
		return nil
	case metricsScript:
		if len(p.metrics) == 0 {
			return p.metricsErr
		}
		m := p.metrics[0]
		if len(p.metrics) > 1 {
			p.metrics = p.metrics[1:]
		}
		data, _ := json.Marshal(m)
		return json.Unmarshal(data, out)
	}
	return fmt.Errorf("unexpected script %q", script)
}

func (p *fakePage) WaitNetworkIdle(context.Context) error {
	if p.onIdle != nil {
		p.onIdle()
	}
	return p.idleErr
}

func (p *fakePage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.html, nil
}

func (p *fakePage) URL(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.urls) == 0 {
		return "", nil
	}
	u := p.urls[0]
	if len(p.urls) > 1 {
		p.urls = p.urls[1:]
	}
	return u, nil
}

func (p *fakePage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePage) Close() error {
	if p.events != nil {
		*p.events = append(*p.events, "page")
	}
	return p.closeErr
}

// fakeLauncher hands out one browser, context and page
type fakeLauncher struct {
	page *fakePage

	launchErr  error
	contextErr error
	pageErr    error

	browserCloseErr error
	contextCloseErr error

	events []string
}

func (l *fakeLauncher) Launch(context.Context) (Browser, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	if l.page != nil {
		l.page.events = &l.events
	}
	return &fakeBrowser{l: l}, nil
}

type fakeBrowser struct{ l *fakeLauncher }

func (b *fakeBrowser) NewContext(context.Context, ContextOptions) (BrowserContext, error) {
	if b.l.contextErr != nil {
		return nil, b.l.contextErr
	}
	return &fakeContext{l: b.l}, nil
}

func (b *fakeBrowser) Close() error {
	b.l.events = append(b.l.events, "browser")
	return b.l.browserCloseErr
}

type fakeContext struct{ l *fakeLauncher }

func (c *fakeContext) NewPage(context.Context) (Page, error) {
	if c.l.pageErr != nil {
		return nil, c.l.pageErr
	}
	return c.l.page, nil
}

func (c *fakeContext) Close() error {
	c.l.events = append(c.l.events, "context")
	return c.l.contextCloseErr
}

// testTiming keeps the production bounds short and removes every pause
func testTiming() Timing {
	return Timing{
		Navigation:    50 * time.Millisecond,
		VisibleCheck:  time.Second,
		OverlayClick:  time.Second,
		TabClick:      time.Second,
		LoadMoreClick: time.Second,
		ScrollIdle:    time.Second,
		PageClick:     time.Second,
		PageIdle:      time.Second,
		Extract:       time.Second,
	}
}
