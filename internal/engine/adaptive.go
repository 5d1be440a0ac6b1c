// internal/engine/adaptive.go
package engine

import (
	"context"
	"time"

	"github.com/law-makers/sitescrape/internal/cache"
	"github.com/law-makers/sitescrape/internal/engine/hybrid"
	"github.com/law-makers/sitescrape/internal/engine/sections"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/law-makers/sitescrape/internal/ratelimit"
	"github.com/law-makers/sitescrape/internal/reqctx"
	"github.com/law-makers/sitescrape/pkg/models"
)

// AdaptiveScraper tries the cheap static path first and falls back to a
// browser render when the server response is blocked or too thin.
type AdaptiveScraper struct {
	fetcher   hybrid.Fetcher
	renderer  Renderer
	extractor sections.Extractor

	cache    cache.Cache
	cacheTTL time.Duration
	limiter  ratelimit.RateLimiter
	proxies  *proxy.ProxyPool
	robots   RobotsPolicy
}

// Option configures an AdaptiveScraper
type Option func(*AdaptiveScraper)

// WithCache stores error-free results in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *AdaptiveScraper) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRenderLimiter throttles browser renders per host
func WithRenderLimiter(l ratelimit.RateLimiter) Option {
	return func(s *AdaptiveScraper) { s.limiter = l }
}

// WithProxyPool rotates requests across proxies
func WithProxyPool(p *proxy.ProxyPool) Option {
	return func(s *AdaptiveScraper) { s.proxies = p }
}

// WithRobots consults a robots.txt policy before fetching
func WithRobots(r RobotsPolicy) Option {
	return func(s *AdaptiveScraper) { s.robots = r }
}

// WithSectionizer replaces the extractor run on static HTML
func WithSectionizer(e sections.Extractor) Option {
	return func(s *AdaptiveScraper) { s.extractor = e }
}

// NewAdaptiveScraper creates the orchestrator over a static fetcher and a
// browser renderer.
func NewAdaptiveScraper(fetcher hybrid.Fetcher, renderer Renderer, opts ...Option) *AdaptiveScraper {
	s := &AdaptiveScraper{
		fetcher:   fetcher,
		renderer:  renderer,
		extractor: sections.New(),
		limiter:   ratelimit.Unlimited{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name returns the name of this scraper
func (s *AdaptiveScraper) Name() string {
	return "AdaptiveScraper"
}

// Scrape runs the static/dynamic pipeline for one URL. It never fails: every
// problem ends up in the result's error list.
func (s *AdaptiveScraper) Scrape(ctx context.Context, opts models.RequestOptions) *models.ScrapeResult {
	ctx = reqctx.WithRequestContext(ctx, opts.URL)
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if opts.Mode == "" {
		opts.Mode = models.ModeAuto
	}

	p := &pipeline{
		scraper: s,
		opts:    opts,
		result:  models.NewScrapeResult(opts.URL),
		state:   stateStart,
		logger:  reqctx.Logger(ctx),
	}
	p.run(ctx)

	p.logger.Info().
		Str("render_path", string(p.result.RenderPath)).
		Int("sections", len(p.result.Sections)).
		Int("errors", len(p.result.Errors)).
		Dur("elapsed", reqctx.Elapsed(ctx)).
		Msg("Scrape finished")

	return p.result
}
