// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/sitescrape/internal/cache"
	"github.com/law-makers/sitescrape/internal/config"
	"github.com/law-makers/sitescrape/internal/engine"
	"github.com/law-makers/sitescrape/internal/engine/dynamic"
	"github.com/law-makers/sitescrape/internal/engine/sections"
	"github.com/law-makers/sitescrape/internal/engine/static"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/law-makers/sitescrape/internal/ratelimit"
	"github.com/law-makers/sitescrape/internal/retry"
	"github.com/law-makers/sitescrape/internal/robots"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Cache      *cache.MemoryCache
	Proxies    *proxy.ProxyPool
	Robots     *robots.Agent
	HTTPClient *http.Client
	Fetcher    *static.Fetcher
	Renderer   *dynamic.Driver
	Scraper    *engine.AdaptiveScraper

	StaticLimiter *ratelimit.DomainLimiter
	RenderLimiter *ratelimit.DomainLimiter

	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the in-memory result cache
//   - Creates the static and dynamic per-domain rate limiters
//   - Creates the proxy pool and the robots.txt agent
//   - Creates the static fetcher and the browser driver
//   - Wires everything into the adaptive scraper
//
// No browser is started here; each dynamic render launches its own.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := setupLogging(cfg, os.Stderr)

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Dur("ttl", cfg.CacheTTL.Duration).
		Msg("Memory cache initialized")

	staticLimiter := ratelimit.NewDomainLimiter(cfg.StaticRateLimitRPS, cfg.StaticRateLimitBurst)
	renderLimiter := ratelimit.NewDomainLimiter(cfg.DynamicRateLimitRPS, cfg.DynamicRateLimitBurst)
	logger.Debug().
		Float64("static_rps", cfg.StaticRateLimitRPS).
		Int("static_burst", cfg.StaticRateLimitBurst).
		Float64("dynamic_rps", cfg.DynamicRateLimitRPS).
		Int("dynamic_burst", cfg.DynamicRateLimitBurst).
		Msg("Rate limiters initialized")

	proxies := proxy.NewProxyPool(cfg.Proxies)
	httpClient := static.NewClient()
	robotsAgent := robots.NewAgent(cfg.RobotsOptions(), httpClient)

	fetcher := static.New(httpClient,
		static.WithLimiter(staticLimiter),
		static.WithRetry(retry.StaticFetchConfig(cfg.StaticRetryAttempts)),
		static.WithTimeout(cfg.HTTPTimeout.Duration),
		static.WithUserAgent(cfg.UserAgent),
	)

	launcher := dynamic.NewChromeLauncher(dynamic.LaunchOptions{
		ExecPath: cfg.ChromePath,
		Headless: cfg.Headless,
	})
	extractor := sections.New()
	driver := dynamic.NewDriver(launcher, dynamic.WithExtractor(extractor))

	scraper := engine.NewAdaptiveScraper(fetcher, driver,
		engine.WithCache(memCache, cfg.CacheTTL.Duration),
		engine.WithRenderLimiter(renderLimiter),
		engine.WithProxyPool(proxies),
		engine.WithRobots(robotsAgent),
		engine.WithSectionizer(extractor),
	)
	logger.Debug().
		Int("proxies", proxies.Len()).
		Bool("respect_robots", cfg.RespectRobots).
		Bool("headless", cfg.Headless).
		Msg("Scraper initialized")

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Cache:      memCache,
		Proxies:    proxies,
		Robots:     robotsAgent,
		HTTPClient: httpClient,
		Fetcher:    fetcher,
		Renderer:   driver,
		Scraper:    scraper,

		StaticLimiter: staticLimiter,
		RenderLimiter: renderLimiter,

		startTime: time.Now(),
	}, nil
}

// setupLogging sets the global zerolog level and writer from cfg. Info is
// treated as non-verbose so only -v shows progress logs.
func setupLogging(cfg *config.Config, w io.Writer) *zerolog.Logger {
	var level zerolog.Level
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	default:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	logger := log.Logger
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return &logger
}

// Close gracefully shuts down the application and all its resources.
// Browsers are owned by individual renders and are already released.
func (a *Application) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}

	stats := a.Cache.Stats()
	a.Logger.Debug().
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Float64("hit_rate", stats.HitRate()).
		Msg("Cache stats")
	a.Logger.Debug().
		Int("static_hosts", a.StaticLimiter.Hosts()).
		Int("render_hosts", a.RenderLimiter.Hosts()).
		Msg("Rate limiter stats")

	a.Cache.Close()
	a.HTTPClient.CloseIdleConnections()

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return ctx.Err()
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
