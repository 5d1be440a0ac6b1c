// internal/engine/dynamic/driver.go
package dynamic

import (
	"context"
	"errors"
	"strings"

	"github.com/law-makers/sitescrape/internal/engine/sections"
	"github.com/law-makers/sitescrape/internal/reqctx"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog"
)

// Outcome is what one browser render produced. It is always well formed,
// even when the session could not be opened.
type Outcome struct {
	Meta         models.Meta
	Sections     []models.Section
	Interactions models.Interactions
	Errors       []models.ErrorRecord
	States       []State
}

func newOutcome(url string) *Outcome {
	return &Outcome{
		Meta:         models.DefaultMeta(),
		Sections:     []models.Section{},
		Interactions: models.NewInteractions(url),
		Errors:       []models.ErrorRecord{},
		States:       []State{StateInit},
	}
}

// Driver renders pages in a real browser, simulating the interactions a
// visitor would perform to reveal lazily loaded content.
type Driver struct {
	launcher  Launcher
	extractor sections.Extractor
	timing    Timing
	context   ContextOptions
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithTiming replaces the production delays
func WithTiming(t Timing) DriverOption {
	return func(d *Driver) { d.timing = t }
}

// WithExtractor replaces the sectionizer run on the final DOM
func WithExtractor(e sections.Extractor) DriverOption {
	return func(d *Driver) { d.extractor = e }
}

// WithContextOptions replaces the browser context profile
func WithContextOptions(o ContextOptions) DriverOption {
	return func(d *Driver) { d.context = o }
}

// NewDriver creates a Driver launching browsers through launcher
func NewDriver(launcher Launcher, opts ...DriverOption) *Driver {
	d := &Driver{
		launcher:  launcher,
		extractor: sections.New(),
		timing:    DefaultTiming(),
		context:   DefaultContextOptions(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Name returns the name of this driver
func (d *Driver) Name() string {
	return "DynamicDriver"
}

// Render opens a fresh session, drives the page at url and extracts its
// sections. headers are sent with every request the page makes.
func (d *Driver) Render(ctx context.Context, url string, headers map[string]string) *Outcome {
	out := newOutcome(url)
	logger := reqctx.Logger(ctx)

	opts := d.context
	if len(headers) > 0 {
		merged := make(map[string]string, len(opts.Headers)+len(headers))
		for k, v := range opts.Headers {
			merged[k] = v
		}
		for k, v := range headers {
			merged[k] = v
		}
		opts.Headers = merged
	}

	err := WithSession(ctx, d.launcher, opts, func(ctx context.Context, page Page) error {
		r := &run{
			page:      page,
			timing:    d.timing,
			extractor: d.extractor,
			out:       out,
			logger:    logger,
		}
		r.drive(ctx, url)
		return nil
	})
	if err != nil {
		phase := models.PhaseJSRender
		if errors.Is(err, models.ErrBrowserInit) {
			phase = models.PhaseInitialization
		}
		logger.Error().Err(err).Str("phase", string(phase)).Msg("Browser session failed")
		out.Errors = append(out.Errors, models.ErrorRecord{Message: models.MessageOf(err), Phase: phase})
		out.States = append(out.States, StateFailed)
	}
	out.States = append(out.States, StateClosed)

	return out
}

// run is the state of one render
type run struct {
	page      Page
	timing    Timing
	extractor sections.Extractor
	out       *Outcome
	logger    *zerolog.Logger
}

func (r *run) drive(ctx context.Context, url string) {
	if err := r.navigate(ctx, url); err != nil {
		r.fail(navigationPhase(err))
		r.salvage(ctx, url)
		return
	}
	r.advance(StateNavigated)

	r.dismissOverlays(ctx)
	r.advance(StateOverlaysHandled)

	r.cycleTabs(ctx)
	r.advance(StateTabsHandled)

	r.expandLoadMore(ctx)
	r.advance(StateLoadMoreHandled)

	r.scrollOrPaginate(ctx)
	r.advance(StateScrollOrPaginationHandled)

	if err := r.extract(ctx, url); err != nil {
		r.fail(scrapingPhase(err))
		r.salvage(ctx, url)
		return
	}
	r.advance(StateContentExtracted)
}

func (r *run) navigate(ctx context.Context, url string) error {
	r.logger.Info().Msg("Navigating")

	navCtx, cancel := context.WithTimeout(ctx, r.timing.Navigation)
	err := r.page.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return err
	}

	if err := sleep(ctx, r.timing.Settle); err != nil {
		return err
	}
	if r.page.Closed() {
		return models.SessionClosedError(nil)
	}
	return nil
}

// extract captures the final DOM and sectionizes it against the current URL
func (r *run) extract(ctx context.Context, url string) error {
	if r.page.Closed() {
		return models.SessionClosedError(nil)
	}

	xctx, cancel := r.extractCtx(ctx)
	defer cancel()

	html, err := r.page.Content(xctx)
	if err != nil {
		return err
	}
	current, err := r.page.URL(xctx)
	if err != nil || current == "" {
		current = url
	}

	r.sectionize(html, current)
	r.logger.Info().Int("sections", len(r.out.Sections)).Msg("Extracted sections")
	return nil
}

// salvage extracts whatever DOM exists after a failure
func (r *run) salvage(ctx context.Context, url string) {
	if r.page.Closed() {
		return
	}

	xctx, cancel := r.extractCtx(ctx)
	defer cancel()

	html, err := r.page.Content(xctx)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Failed to get partial content")
		return
	}
	r.sectionize(html, url)
	r.logger.Info().Int("sections", len(r.out.Sections)).Msg("Recovered partial content")
}

// extractCtx bounds a DOM capture by Timing.Extract alone. The capture still
// runs when the request deadline already fired so that the work done on the
// page is not lost.
func (r *run) extractCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.timing.Extract)
}

func (r *run) sectionize(html, url string) {
	page, err := r.extractor.Extract(html, url)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to parse rendered DOM")
		return
	}
	r.out.Meta = page.Meta
	r.out.Sections = page.Sections
}

func (r *run) advance(s State) {
	r.logger.Debug().Stringer("state", s).Msg("Render state")
	r.out.States = append(r.out.States, s)
}

func (r *run) fail(phase models.Phase, err error) {
	r.logger.Error().Err(err).Str("phase", string(phase)).Msg("Render failed")
	r.out.Errors = append(r.out.Errors, models.ErrorRecord{Message: models.MessageOf(err), Phase: phase})
	r.advance(StateFailed)
}

// navigationPhase maps a navigation failure to its phase and domain error.
// Abort signals and timeouts belong to navigation; anything else happened
// while scraping.
func navigationPhase(err error) (models.Phase, error) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "net::err_aborted"), strings.Contains(msg, "ns_binding_aborted"):
		return models.PhaseNavigation, models.NavigationAbortedError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.PhaseNavigation, models.NavigationTimeoutError(err)
	}
	return scrapingPhase(err)
}

func scrapingPhase(err error) (models.Phase, error) {
	if errors.Is(err, models.ErrSessionClosed) || strings.Contains(strings.ToLower(err.Error()), "closed") {
		return models.PhaseScraping, models.SessionClosedError(err)
	}
	return models.PhaseScraping, err
}
