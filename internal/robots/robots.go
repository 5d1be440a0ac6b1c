// internal/robots/robots.go
package robots

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// ErrDisallowed is returned by Check when robots.txt forbids the path
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Options controls robots.txt handling
type Options struct {
	Respect   bool
	UserAgent string
	CacheTTL  time.Duration
	Overrides []string // hosts that are always allowed
}

// Agent evaluates robots.txt rules, caching them per host
type Agent struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	respect   bool
	overrides map[string]struct{}

	mu    sync.RWMutex
	cache map[string]entry
}

type entry struct {
	fetched time.Time
	data    *robotstxt.RobotsData
}

// NewAgent creates an Agent. With Respect unset every URL is allowed and no
// robots.txt is ever fetched.
func NewAgent(opts Options, client *http.Client) *Agent {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	overrides := make(map[string]struct{}, len(opts.Overrides))
	for _, host := range opts.Overrides {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			overrides[host] = struct{}{}
		}
	}

	return &Agent{
		client:    client,
		userAgent: opts.UserAgent,
		ttl:       ttl,
		respect:   opts.Respect,
		overrides: overrides,
		cache:     make(map[string]entry),
	}
}

// Check returns ErrDisallowed when rawURL may not be scraped. Errors while
// fetching robots.txt fail open.
func (a *Agent) Check(ctx context.Context, rawURL string) error {
	if a == nil || !a.respect {
		return nil
	}

	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() {
		return nil
	}
	if _, ok := a.overrides[strings.ToLower(target.Hostname())]; ok {
		return nil
	}

	data, err := a.rules(ctx, target)
	if err != nil {
		log.Debug().Err(err).Str("url", rawURL).Msg("robots.txt unavailable, allowing")
		return nil
	}

	agent := a.userAgent
	if agent == "" {
		agent = "*"
	}
	if data.TestAgent(target.EscapedPath(), agent) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDisallowed, target.EscapedPath())
}

func (a *Agent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	e, ok := a.cache[host]
	a.mu.RUnlock()
	if ok && time.Since(e.fetched) < a.ttl {
		return e.data, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// FromResponse applies the usual status rules: 4xx allows all, 5xx disallows all
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.mu.Lock()
	a.cache[host] = entry{fetched: time.Now(), data: data}
	a.mu.Unlock()

	return data, nil
}
