// internal/engine/pipeline.go
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/sitescrape/internal/cache"
	"github.com/law-makers/sitescrape/internal/engine/dynamic"
	"github.com/law-makers/sitescrape/internal/engine/hybrid"
	"github.com/law-makers/sitescrape/internal/proxy"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog"
)

// pipelineState is a state of the fallback chain
type pipelineState string

const (
	stateStart          pipelineState = "start"
	stateStaticAttempt  pipelineState = "static_attempt"
	stateStaticAccepted pipelineState = "static_accepted"
	stateDynamicAttempt pipelineState = "dynamic_attempt"
	stateDynamicDone    pipelineState = "dynamic_done"
	stateCached         pipelineState = "cached"
	stateDone           pipelineState = "done"
)

// pipeline is one request moving through the state machine. Each step does
// its work and names the next state with a reason, so the recorded
// transitions read as the path the request took.
type pipeline struct {
	scraper *AdaptiveScraper
	opts    models.RequestOptions
	result  *models.ScrapeResult
	state   pipelineState
	proxy   string
	logger  *zerolog.Logger
}

func (p *pipeline) run(ctx context.Context) {
	for p.state != stateDone {
		switch p.state {
		case stateStart:
			p.start(ctx)
		case stateStaticAttempt:
			p.staticAttempt(ctx)
		case stateDynamicAttempt:
			p.dynamicAttempt(ctx)
		case stateStaticAccepted, stateDynamicDone:
			p.transition(stateDone, "result aggregated")
			p.store()
		case stateCached:
			p.transition(stateDone, "served from cache")
		default:
			p.transition(stateDone, "unknown state")
		}
	}
}

func (p *pipeline) transition(to pipelineState, reason string) {
	p.logger.Debug().
		Str("from", string(p.state)).
		Str("to", string(to)).
		Str("reason", reason).
		Msg("Pipeline transition")
	p.result.Transitions = append(p.result.Transitions, fmt.Sprintf("%s -> %s: %s", p.state, to, reason))
	p.state = to
}

func (p *pipeline) start(ctx context.Context) {
	s := p.scraper

	if s.cache != nil && !p.opts.NoCache {
		if cached, ok := s.cache.Get(cache.Key(p.opts.URL, p.opts.Mode, p.opts.Headers)); ok {
			hit := *cached
			hit.Transitions = append([]string(nil), cached.Transitions...)
			p.result = &hit
			p.transition(stateCached, "cache hit")
			return
		}
	}

	if s.robots != nil {
		if err := s.robots.Check(ctx, p.opts.URL); err != nil {
			p.result.AddError(models.PhaseStaticFetch, err.Error())
			p.transition(stateDone, "disallowed by robots.txt")
			return
		}
	}

	p.proxy = p.opts.Proxy
	if p.proxy == "" {
		p.proxy = s.proxies.GetNext()
	}

	if p.opts.Mode == models.ModeDynamic {
		p.transition(stateDynamicAttempt, "mode dynamic")
		return
	}
	p.transition(stateStaticAttempt, "mode "+string(p.opts.Mode))
}

func (p *pipeline) staticAttempt(ctx context.Context) {
	s := p.scraper
	d := hybrid.Decide(proxy.WithProxy(ctx, p.proxy), s.fetcher, p.opts)

	switch {
	case d.Err == nil:
		s.proxies.MarkHealthy(p.proxy)
	case errors.Is(d.Err, models.ErrBlocked):
		s.proxies.MarkFailed(p.proxy)
	}

	forced := p.opts.Mode == models.ModeStatic
	if forced && d.HTML != "" {
		d.Strategy = hybrid.StrategyStatic
		d.Reason = "mode static: " + d.Reason
		d.Err = nil
	}

	if d.Strategy == hybrid.StrategyStatic {
		page, err := s.extractor.Extract(d.HTML, p.opts.URL)
		if err == nil {
			AggregateStatic(p.result, page)
			p.transition(stateStaticAccepted, d.Reason)
			return
		}
		d.Err = models.FetchFailedError(err)
		d.Reason = "static parse failed"
	}

	if d.Err != nil {
		p.result.AddError(models.PhaseStaticFetch, models.MessageOf(d.Err))
	}
	if forced {
		p.transition(stateDone, d.Reason)
		return
	}
	p.transition(stateDynamicAttempt, d.Reason)
}

func (p *pipeline) dynamicAttempt(ctx context.Context) {
	s := p.scraper
	ctx = proxy.WithProxy(ctx, p.proxy)

	if err := s.limiter.Wait(ctx, p.opts.URL); err != nil {
		p.result.AddError(models.PhaseJSRender, models.RenderFailedError(err).Message)
		p.transition(stateDone, "render cancelled")
		return
	}

	out, err := p.render(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("Browser render panicked")
		p.result.AddError(models.PhaseJSRender, models.RenderFailedError(err).Message)
		p.transition(stateDone, "render panicked")
		return
	}

	AggregateDynamic(p.result, out)
	p.transition(stateDynamicDone, fmt.Sprintf("rendered %d sections with %d errors", len(out.Sections), len(out.Errors)))
}

// render runs the browser and converts a panic into an error
func (p *pipeline) render(ctx context.Context) (out *dynamic.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.scraper.renderer.Render(ctx, p.opts.URL, p.opts.Headers), nil
}

// store caches results that completed without any error
func (p *pipeline) store() {
	s := p.scraper
	if s.cache == nil || p.opts.NoCache || p.result.HasErrors() {
		return
	}
	stored := *p.result
	if err := s.cache.Set(cache.Key(p.opts.URL, p.opts.Mode, p.opts.Headers), &stored, s.cacheTTL); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to cache result")
	}
}
