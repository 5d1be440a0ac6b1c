// internal/engine/dynamic/strategies.go
package dynamic

// Interaction limits
const (
	maxTabClicks      = 3
	maxLoadMoreClicks = 3
	maxScrolls        = 5
	maxStalls         = 2
	maxPageHops       = 2

	// pagination only runs when scrolling did less than this
	paginateBelowScrolls = 2
)

// Ranked strategy tables. Order is priority: the first usable entry wins.
var (
	overlayStrategies = []Selector{
		HasText("button", "Accept"),
		HasText("button", "Accept All"),
		HasText("button", "Accept all"),
		HasText("button", "I accept"),
		HasText("button", "Agree"),
		HasText("button", "OK"),
		HasText("button", "Got it"),
		HasText("button", "Close"),
		CSS(`[aria-label*="accept" i]`),
		CSS(`[aria-label*="cookie" i] button`),
		CSS(`[class*="cookie" i] button`),
		CSS(`[id*="cookie" i] button`),
		CSS(`[class*="consent" i] button`),
		CSS(`[id*="consent" i] button`),
		CSS(`.modal-close`),
		CSS(`[aria-label="Close"]`),
		CSS(`[data-testid*="accept" i]`),
		CSS(`[data-testid*="cookie" i]`),
	}

	tabStrategies = []Selector{
		CSS(`[role="tab"]`),
		CSS(`button[aria-selected]`),
		CSS(`.tab`),
		CSS(`[data-tab]`),
	}

	loadMoreStrategies = []Selector{
		HasText("button", "Load more"),
		HasText("button", "Show more"),
		HasText("button", "See more"),
		HasText("a", "Load more"),
		CSS(`[class*="load-more" i]`),
		CSS(`[class*="show-more" i]`),
	}

	nextPageStrategies = []Selector{
		HasText("a", "Next"),
		HasText("a", ">"),
		CSS(`[aria-label*="next" i]`),
		CSS(`a[rel="next"]`),
		CSS(`.pagination a:last-child`),
		CSS(`.next`),
	}
)
