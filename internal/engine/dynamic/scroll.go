// internal/engine/dynamic/scroll.go
package dynamic

import "context"

const (
	metricsScript = `({height: document.body.scrollHeight, text: document.body.innerText.length})`
	scrollScript  = `window.scrollTo(0, document.body.scrollHeight)`
)

// pageMetrics are the growth signals compared around a scroll
type pageMetrics struct {
	Height int64 `json:"height"`
	Text   int64 `json:"text"`
}

func (m pageMetrics) grewFrom(prev pageMetrics) bool {
	return m.Height > prev.Height || m.Text > prev.Text
}

// scrollOrPaginate always scrolls first and only paginates when scrolling
// ran fewer than two iterations.
func (r *run) scrollOrPaginate(ctx context.Context) {
	r.infiniteScroll(ctx)
	if r.out.Interactions.Scrolls < paginateBelowScrolls {
		r.paginate(ctx)
	}
}

// infiniteScroll scrolls to the bottom until the page stops growing. Any
// failure ends the loop silently.
func (r *run) infiniteScroll(ctx context.Context) {
	stalls := 0
	for i := 0; i < maxScrolls; i++ {
		if r.page.Closed() {
			return
		}

		before, err := r.metrics(ctx)
		if err != nil {
			return
		}
		if err := r.page.Evaluate(ctx, scrollScript, nil); err != nil {
			return
		}
		r.out.Interactions.Scrolls++

		if err := sleep(ctx, r.timing.ScrollPause); err != nil {
			return
		}
		if r.page.Closed() {
			return
		}

		idleCtx, cancel := context.WithTimeout(ctx, r.timing.ScrollIdle)
		_ = r.page.WaitNetworkIdle(idleCtx)
		cancel()

		after, err := r.metrics(ctx)
		if err != nil {
			return
		}
		if after.grewFrom(before) {
			stalls = 0
			continue
		}
		stalls++
		if stalls >= maxStalls {
			r.logger.Debug().Int("scrolls", r.out.Interactions.Scrolls).Msg("Scrolling stalled")
			return
		}
	}
}

// paginate follows "next" controls for a bounded number of hops
func (r *run) paginate(ctx context.Context) {
	for hop := 0; hop < maxPageHops; hop++ {
		if !r.nextPage(ctx) {
			return
		}
	}
}

// nextPage tries each next-page strategy in order and reports whether one
// of them moved to a new page.
func (r *run) nextPage(ctx context.Context) bool {
	for _, sel := range nextPageStrategies {
		if ctx.Err() != nil {
			return false
		}
		if !r.visible(ctx, sel, 0) {
			continue
		}
		if err := r.click(ctx, sel, 0, r.timing.PageClick); err != nil {
			r.logger.Debug().Err(err).Stringer("selector", sel).Msg("Pagination click failed")
			continue
		}

		idleCtx, cancel := context.WithTimeout(ctx, r.timing.PageIdle)
		err := r.page.WaitNetworkIdle(idleCtx)
		cancel()
		if err != nil {
			r.logger.Debug().Err(err).Stringer("selector", sel).Msg("Pagination did not settle")
			continue
		}

		current, err := r.page.URL(ctx)
		if err != nil {
			continue
		}
		r.out.Interactions.Pages = append(r.out.Interactions.Pages, current)
		r.logger.Info().Str("page", current).Int("pages", len(r.out.Interactions.Pages)).Msg("Followed pagination")

		_ = sleep(ctx, r.timing.PageSettle)
		return true
	}
	return false
}

func (r *run) metrics(ctx context.Context) (pageMetrics, error) {
	var m pageMetrics
	err := r.page.Evaluate(ctx, metricsScript, &m)
	return m, err
}
