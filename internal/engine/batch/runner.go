// internal/engine/batch/runner.go
package batch

import (
	"context"

	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Scraper is what the runner drives
type Scraper interface {
	Scrape(ctx context.Context, opts models.RequestOptions) *models.ScrapeResult
}

// Item is the outcome of one request. Err is set only when the request was
// rejected before scraping; scrape failures live in Result.Errors.
type Item struct {
	Index  int
	Result *models.ScrapeResult
	Err    error
}

// Runner scrapes many URLs with bounded concurrency
type Runner struct {
	scraper     Scraper
	concurrency int
}

// New creates a Runner. A non-positive concurrency auto-tunes.
func New(scraper Scraper, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = OptimalConcurrency()
	}
	return &Runner{
		scraper:     scraper,
		concurrency: Clamp(concurrency, 1, MaxConcurrency),
	}
}

// Concurrency returns the effective parallelism
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Run scrapes requests and streams one Item per request. The channel is
// closed once every started scrape has finished. Cancelling ctx stops new
// scrapes from starting.
func (r *Runner) Run(ctx context.Context, requests []models.RequestOptions) <-chan Item {
	items := make(chan Item, len(requests))

	go func() {
		defer close(items)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		for _, req := range Interleave(requests) {
			if gctx.Err() != nil {
				break
			}
			req := req
			g.Go(func() error {
				items <- r.one(gctx, req)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			log.Warn().Err(err).Msg("Batch stopped early")
		}
	}()

	return items
}

func (r *Runner) one(ctx context.Context, req Request) Item {
	if err := urlutil.ValidateURL(req.Opts.URL); err != nil {
		return Item{Index: req.Index, Err: models.ValidationError("url", err)}
	}
	return Item{Index: req.Index, Result: r.scraper.Scrape(ctx, req.Opts)}
}

// Collect drains items into a slice ordered by input index. onItem, if
// set, sees each item as it arrives.
func Collect(items <-chan Item, n int, onItem func(Item)) []Item {
	out := make([]Item, n)
	for item := range items {
		if onItem != nil {
			onItem(item)
		}
		if item.Index >= 0 && item.Index < n {
			out[item.Index] = item
		}
	}
	return out
}
