// internal/engine/dynamic/timing.go
package dynamic

import (
	"context"
	"time"
)

// Timing holds every delay and bound used while driving a page
type Timing struct {
	Navigation time.Duration // DOMContentLoaded bound
	Settle     time.Duration // pause after navigation for initial scripts

	VisibleCheck time.Duration // bound on one visibility probe

	OverlayClick time.Duration
	OverlayPause time.Duration // after a dismissal
	OverlayRetry time.Duration // before the second pass

	TabClick time.Duration
	TabPause time.Duration

	LoadMoreClick time.Duration
	LoadMorePause time.Duration

	ScrollPause time.Duration
	ScrollIdle  time.Duration // best effort network idle after a scroll

	PageClick  time.Duration
	PageIdle   time.Duration
	PageSettle time.Duration

	Extract time.Duration // capture of the final DOM
}

// DefaultTiming returns the production delays
func DefaultTiming() Timing {
	return Timing{
		Navigation:    30 * time.Second,
		Settle:        3000 * time.Millisecond,
		VisibleCheck:  1000 * time.Millisecond,
		OverlayClick:  2000 * time.Millisecond,
		OverlayPause:  1000 * time.Millisecond,
		OverlayRetry:  2000 * time.Millisecond,
		TabClick:      3000 * time.Millisecond,
		TabPause:      1000 * time.Millisecond,
		LoadMoreClick: 3000 * time.Millisecond,
		LoadMorePause: 2000 * time.Millisecond,
		ScrollPause:   2500 * time.Millisecond,
		ScrollIdle:    4000 * time.Millisecond,
		PageClick:     5000 * time.Millisecond,
		PageIdle:      10 * time.Second,
		PageSettle:    1000 * time.Millisecond,
		Extract:       DefaultOperationTimeout,
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
