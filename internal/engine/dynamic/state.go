// internal/engine/dynamic/state.go
package dynamic

// State is a step of the render state machine
type State int

const (
	StateInit State = iota
	StateNavigated
	StateOverlaysHandled
	StateTabsHandled
	StateLoadMoreHandled
	StateScrollOrPaginationHandled
	StateContentExtracted
	StateFailed
	StateClosed
)

var stateNames = [...]string{
	StateInit:                      "init",
	StateNavigated:                 "navigated",
	StateOverlaysHandled:           "overlays_handled",
	StateTabsHandled:               "tabs_handled",
	StateLoadMoreHandled:           "load_more_handled",
	StateScrollOrPaginationHandled: "scroll_or_pagination_handled",
	StateContentExtracted:          "content_extracted",
	StateFailed:                    "failed",
	StateClosed:                    "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
