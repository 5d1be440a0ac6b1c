// internal/engine/aggregate.go
package engine

import (
	"github.com/law-makers/sitescrape/internal/engine/dynamic"
	"github.com/law-makers/sitescrape/internal/engine/sections"
	"github.com/law-makers/sitescrape/pkg/models"
)

// AggregateStatic fills result from a sectionized server response. The
// interaction log keeps only the original URL and zero scrolls.
func AggregateStatic(result *models.ScrapeResult, page *sections.Page) {
	result.Meta = page.Meta
	result.Sections = page.Sections
	result.Interactions = models.NewInteractions(result.URL)
	result.RenderPath = models.RenderStatic
}

// AggregateDynamic fills result from a browser render. Errors already in
// result, such as a failed static attempt, are kept ahead of the render's.
func AggregateDynamic(result *models.ScrapeResult, out *dynamic.Outcome) {
	result.Meta = out.Meta
	if result.Meta == (models.Meta{}) {
		result.Meta = models.DefaultMeta()
	}
	if out.Sections != nil {
		result.Sections = out.Sections
	}
	result.Interactions = out.Interactions
	if len(result.Interactions.Pages) == 0 {
		result.Interactions.Pages = []string{result.URL}
	}
	if result.Interactions.Clicks == nil {
		result.Interactions.Clicks = []string{}
	}
	result.Errors = append(result.Errors, out.Errors...)
	result.RenderPath = models.RenderDynamic
}
