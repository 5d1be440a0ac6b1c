// internal/engine/static/fetcher.go
package static

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/law-makers/sitescrape/internal/ratelimit"
	"github.com/law-makers/sitescrape/internal/retry"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds one static GET including redirects
	DefaultTimeout = 15 * time.Second

	// DesktopUserAgent is sent unless the caller overrides User-Agent
	DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxBodyBytes = 10 << 20
)

// errConnectTimeout marks a timeout that hit before any connection was made
var errConnectTimeout = errors.New("connect timeout")

// Fetcher performs the lightweight static GET of the fetch strategy selector
type Fetcher struct {
	client    *http.Client
	limiter   ratelimit.RateLimiter
	retry     retry.Config
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithLimiter throttles fetches per host
func WithLimiter(l ratelimit.RateLimiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithRetry sets the retry policy for gateway errors
func WithRetry(cfg retry.Config) Option {
	return func(f *Fetcher) { f.retry = cfg }
}

// WithTimeout overrides the fixed request timeout
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the desktop user agent
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewClient returns a client that follows redirects and routes each request
// through the proxy attached to its context.
func NewClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = proxy.FromRequest
	tr.DisableCompression = true
	return &http.Client{Transport: tr}
}

// New creates a Fetcher. A nil client gets NewClient().
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = NewClient()
	}
	f := &Fetcher{
		client:    client,
		limiter:   ratelimit.Unlimited{},
		retry:     retry.StaticFetchConfig(1),
		timeout:   DefaultTimeout,
		userAgent: DesktopUserAgent,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return "StaticFetcher"
}

// Fetch GETs opts.URL and returns the decoded body. Failures are returned as
// *models.ScrapeError: BLOCKED for 401/403/429, TIMEOUT when no connection
// could be made in time and FETCH_FAILED for anything else, including a
// server that accepted the connection and then stalled.
func (f *Fetcher) Fetch(ctx context.Context, opts models.RequestOptions) (string, error) {
	start := time.Now()

	log.Debug().
		Str("url", opts.URL).
		Str("fetcher", f.Name()).
		Msg("Starting fetch")

	if err := f.limiter.Wait(ctx, opts.URL); err != nil {
		return "", models.FetchFailedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var body string
	err := retry.WithRetry(ctx, f.retry, func() error {
		b, err := f.do(ctx, opts)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		mapped := classify(err)
		log.Debug().
			Err(err).
			Str("url", opts.URL).
			Dur("elapsed", time.Since(start)).
			Msg("Fetch failed")
		return "", mapped
	}

	log.Debug().
		Str("url", opts.URL).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch completed")

	return body, nil
}

func (f *Fetcher) do(ctx context.Context, opts models.RequestOptions) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	var connected atomic.Bool
	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { connected.Store(true) },
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := f.client.Do(req)
	if err != nil {
		if !connected.Load() && isTimeout(err) {
			return "", fmt.Errorf("%w: %w", errConnectTimeout, err)
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", retry.NewHTTPError(resp.StatusCode, resp.Status, "")
	}

	return readBody(resp)
}

// readBody undoes Content-Encoding and converts the declared charset to UTF-8
func readBody(resp *http.Response) (string, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	utf8Reader, err := charset.NewReader(reader, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset decode: %w", err)
	}

	limited := io.LimitReader(utf8Reader, maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return "", fmt.Errorf("response body exceeds limit of %d bytes", maxBodyBytes)
	}
	return string(body), nil
}

// classify maps a transport or status error to the selector's domain errors
func classify(err error) error {
	var httpErr retry.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return models.BlockedError(httpErr).WithDetail("status", httpErr.StatusCode)
		}
		return models.FetchFailedError(httpErr).WithDetail("status", httpErr.StatusCode)
	}

	if errors.Is(err, errConnectTimeout) {
		return models.ConnectTimeoutError(err)
	}

	return models.FetchFailedError(err)
}

// isTimeout reports a network timeout or an expired request deadline
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
