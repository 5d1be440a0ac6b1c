package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// failureCooldown is how long a failed proxy is skipped
const failureCooldown = 5 * time.Minute

// ProxyPool rotates through a list of proxies, skipping recently failed ones.
// A nil *ProxyPool is valid and never yields a proxy.
type ProxyPool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
	now     func() time.Time
}

// NewProxyPool creates a new ProxyPool. Blank entries are dropped.
func NewProxyPool(proxies []string) *ProxyPool {
	cleaned := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &ProxyPool{
		proxies: cleaned,
		failed:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// Len returns the number of configured proxies
func (p *ProxyPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// GetNext returns the next healthy proxy from the pool, or "" if the pool is
// empty. When every proxy is cooling down the next one in order is returned.
func (p *ProxyPool) GetNext() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for range p.proxies {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failTime, ok := p.failed[proxy]; ok {
			if p.now().Sub(failTime) < failureCooldown {
				continue
			}
			delete(p.failed, proxy)
		}
		return proxy
	}

	proxy := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return proxy
}

// MarkFailed marks a proxy as failed so it will be skipped for a while
func (p *ProxyPool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *ProxyPool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// Validate checks that every entry parses as an http, https or socks5 URL
func Validate(proxies []string) error {
	for _, raw := range proxies {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid proxy %q: %w", raw, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("invalid proxy %q: unsupported scheme %q", raw, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid proxy %q: missing host", raw)
		}
	}
	return nil
}

type ctxKey struct{}

// WithProxy attaches the proxy chosen for one request to ctx
func WithProxy(ctx context.Context, proxy string) context.Context {
	if proxy == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, proxy)
}

// FromContext returns the proxy attached to ctx, if any
func FromContext(ctx context.Context) string {
	p, _ := ctx.Value(ctxKey{}).(string)
	return p
}

// FromRequest is an http.Transport Proxy func that routes a request through
// the proxy attached to its context.
func FromRequest(req *http.Request) (*url.URL, error) {
	p := FromContext(req.Context())
	if p == "" {
		return nil, nil
	}
	return url.Parse(p)
}
