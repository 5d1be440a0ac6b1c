// internal/engine/dynamic/browser.go
package dynamic

import (
	"context"
	"fmt"
	"time"
)

const (
	// DesktopUserAgent is presented by every rendering context
	DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AcceptLanguage is sent with every request made by a page
	AcceptLanguage = "en-US,en;q=0.9"

	// DefaultOperationTimeout bounds page operations whose caller set no deadline
	DefaultOperationTimeout = 45 * time.Second
)

// Launcher starts browser instances
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process
type Browser interface {
	NewContext(ctx context.Context, opts ContextOptions) (BrowserContext, error)
	Close() error
}

// BrowserContext is an isolated profile inside a browser: cookies, cache and
// storage are not shared with other contexts.
type BrowserContext interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab. Every method honors the deadline of ctx and falls
// back to the page's default operation timeout when ctx has none.
type Page interface {
	// Navigate loads url and returns once DOMContentLoaded fired.
	Navigate(ctx context.Context, url string) error

	// Count returns how many elements match sel.
	Count(ctx context.Context, sel Selector) (int, error)

	// Visible reports whether the index-th match of sel is rendered.
	Visible(ctx context.Context, sel Selector, index int) (bool, error)

	// Click clicks the index-th match of sel.
	Click(ctx context.Context, sel Selector, index int) error

	// Evaluate runs script and decodes its JSON result into out, if non-nil.
	Evaluate(ctx context.Context, script string, out any) error

	// WaitNetworkIdle blocks until no request has been in flight for a
	// short quiet window.
	WaitNetworkIdle(ctx context.Context) error

	// Content returns the serialized DOM.
	Content(ctx context.Context) (string, error)

	// URL returns the current, possibly redirected, location.
	URL(ctx context.Context) (string, error)

	// Closed reports whether the page or its browser went away.
	Closed() bool

	Close() error
}

// ContextOptions configures an isolated browser context
type ContextOptions struct {
	ViewportWidth   int
	ViewportHeight  int
	UserAgent       string
	AcceptLanguage  string
	IgnoreTLSErrors bool
	Headers         map[string]string
}

// DefaultContextOptions returns the desktop profile used for every render
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		UserAgent:       DesktopUserAgent,
		AcceptLanguage:  AcceptLanguage,
		IgnoreTLSErrors: true,
	}
}

// Selector addresses elements by CSS, optionally narrowed to those whose
// rendered text contains Text (case-insensitive).
type Selector struct {
	CSS  string
	Text string
}

// String renders the selector the way it appears in the interaction log
func (s Selector) String() string {
	if s.Text == "" {
		return s.CSS
	}
	return fmt.Sprintf("%s:has-text(%q)", s.CSS, s.Text)
}

// CSS returns a plain CSS selector
func CSS(css string) Selector {
	return Selector{CSS: css}
}

// HasText returns a selector for css elements containing text
func HasText(css, text string) Selector {
	return Selector{CSS: css, Text: text}
}
