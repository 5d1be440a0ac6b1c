// internal/engine/hybrid/strategy.go
package hybrid

import (
	"context"
	"errors"

	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Strategy represents the rendering path to use
type Strategy int

const (
	// StrategyStatic sectionizes the raw server response
	StrategyStatic Strategy = iota

	// StrategyDynamic hands the URL to the browser driver
	StrategyDynamic
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyStatic:
		return "static"
	case StrategyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Fetcher retrieves the raw HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, opts models.RequestOptions) (string, error)
}

// Decision is the outcome of Decide. Err is a recoverable static_fetch error
// to record when the decision falls through to the dynamic path.
type Decision struct {
	Strategy Strategy
	HTML     string
	Reason   string
	Err      error
}

// Decide fetches the page statically and picks the rendering path
func Decide(ctx context.Context, f Fetcher, opts models.RequestOptions) Decision {
	html, err := f.Fetch(ctx, opts)
	if err != nil {
		reason := "static fetch failed"
		var se *models.ScrapeError
		if errors.As(err, &se) {
			reason += ": " + string(se.Code)
		}
		log.Debug().Err(err).Str("url", opts.URL).Msg("Static fetch failed, falling back to browser")
		return Decision{Strategy: StrategyDynamic, Reason: reason, Err: err}
	}

	v := Detect(html)
	log.Debug().
		Str("url", opts.URL).
		Bool("sufficient", v.Sufficient).
		Str("marker", v.Marker).
		Int("visible_chars", v.VisibleChars).
		Msg("Static content inspected")

	if !v.Sufficient {
		return Decision{
			Strategy: StrategyDynamic,
			HTML:     html,
			Reason:   v.Reason,
			Err:      models.InsufficientContentError(v.Reason),
		}
	}
	return Decision{Strategy: StrategyStatic, HTML: html, Reason: v.Reason}
}
