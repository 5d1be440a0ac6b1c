// Package engine turns a URL into a ScrapeResult, choosing between the raw
// server response and a browser render.
package engine

import (
	"context"

	"github.com/law-makers/sitescrape/internal/engine/dynamic"
	"github.com/law-makers/sitescrape/pkg/models"
)

// Scraper is the interface that all scraping engines must implement
type Scraper interface {
	// Scrape always returns a well formed result; failures are recorded
	// in its error list.
	Scrape(ctx context.Context, opts models.RequestOptions) *models.ScrapeResult

	// Name returns the name of the scraper implementation
	Name() string
}

// Renderer produces a browser rendered outcome for a URL
type Renderer interface {
	Render(ctx context.Context, url string, headers map[string]string) *dynamic.Outcome
}

// RobotsPolicy decides whether a URL may be scraped at all
type RobotsPolicy interface {
	Check(ctx context.Context, url string) error
}
