// internal/engine/dynamic/interactions.go
package dynamic

import (
	"context"
	"fmt"
	"time"
)

// dismissOverlays clicks the first visible consent or close control. When
// nothing matched it waits for lazily injected banners and tries once more.
func (r *run) dismissOverlays(ctx context.Context) {
	for pass := 0; pass < 2; pass++ {
		for _, sel := range overlayStrategies {
			if ctx.Err() != nil {
				return
			}
			if !r.visible(ctx, sel, 0) {
				continue
			}
			if err := r.click(ctx, sel, 0, r.timing.OverlayClick); err != nil {
				r.logger.Debug().Err(err).Stringer("selector", sel).Msg("Overlay click failed")
				continue
			}
			r.record("overlay: " + sel.String())
			_ = sleep(ctx, r.timing.OverlayPause)
			return
		}
		if pass == 0 {
			if err := sleep(ctx, r.timing.OverlayRetry); err != nil {
				return
			}
		}
	}
}

// cycleTabs clicks through the first tab family with more than one member
func (r *run) cycleTabs(ctx context.Context) {
	for _, sel := range tabStrategies {
		n, err := r.count(ctx, sel)
		if err != nil || n <= 1 {
			continue
		}

		r.logger.Debug().Int("tabs", n).Stringer("selector", sel).Msg("Found tabs")
		for i := 0; i < min(maxTabClicks, n); i++ {
			if err := r.click(ctx, sel, i, r.timing.TabClick); err != nil {
				r.logger.Debug().Err(err).Int("index", i).Msg("Tab click failed")
				continue
			}
			r.record(fmt.Sprintf("tab: %s[%d]", sel, i))
			if err := sleep(ctx, r.timing.TabPause); err != nil {
				return
			}
		}
		return
	}
}

// expandLoadMore keeps clicking load-more controls within a global budget
func (r *run) expandLoadMore(ctx context.Context) {
	clicks := 0
	for _, sel := range loadMoreStrategies {
		for clicks < maxLoadMoreClicks {
			if !r.visible(ctx, sel, 0) {
				break
			}
			if err := r.click(ctx, sel, 0, r.timing.LoadMoreClick); err != nil {
				r.logger.Debug().Err(err).Stringer("selector", sel).Msg("Load more click failed")
				break
			}
			clicks++
			r.record("load-more: " + sel.String())
			r.logger.Debug().Int("clicks", clicks).Int("max", maxLoadMoreClicks).Msg("Clicked load more")
			if err := sleep(ctx, r.timing.LoadMorePause); err != nil {
				return
			}
		}
	}
}

// visible reports whether the index-th match of sel exists and is rendered
func (r *run) visible(ctx context.Context, sel Selector, index int) bool {
	vctx, cancel := context.WithTimeout(ctx, r.timing.VisibleCheck)
	defer cancel()

	n, err := r.page.Count(vctx, sel)
	if err != nil || n <= index {
		return false
	}
	ok, err := r.page.Visible(vctx, sel, index)
	return err == nil && ok
}

func (r *run) count(ctx context.Context, sel Selector) (int, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timing.VisibleCheck)
	defer cancel()
	return r.page.Count(cctx, sel)
}

func (r *run) click(ctx context.Context, sel Selector, index int, bound time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, bound)
	defer cancel()
	return r.page.Click(cctx, sel, index)
}

func (r *run) record(click string) {
	r.out.Interactions.Clicks = append(r.out.Interactions.Clicks, click)
	r.logger.Info().Str("click", click).Msg("Interaction")
}
