// internal/engine/hybrid/detector.go
package hybrid

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinVisibleChars is the visible text length static HTML must exceed
const MinVisibleChars = 500

// frameworkMarkers are matched against the lowercased document
var frameworkMarkers = []string{
	"react",
	"vue",
	"angular",
	"next.js",
	"__next_data__",
	"ng-app",
	"data-reactroot",
}

var (
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
)

// Verdict explains a content sufficiency decision
type Verdict struct {
	Sufficient   bool
	Marker       string
	VisibleChars int
	Reason       string
}

// Detect inspects static HTML and decides whether it already carries enough
// content or needs a browser render. It is pure.
func Detect(html string) Verdict {
	lower := strings.ToLower(html)

	for _, marker := range frameworkMarkers {
		if strings.Contains(lower, marker) {
			return Verdict{Marker: marker, Reason: "framework marker " + marker}
		}
	}

	if !strings.Contains(lower, "<main") && !strings.Contains(lower, "<article") {
		if strings.Contains(lower, `<div id="root"`) || strings.Contains(lower, `<div id="app"`) {
			return Verdict{Reason: "root mount element without main content"}
		}
	}

	n := VisibleTextLength(html)
	if n > MinVisibleChars {
		return Verdict{Sufficient: true, VisibleChars: n, Reason: "static content sufficient"}
	}
	return Verdict{VisibleChars: n, Reason: "too little visible text"}
}

// IsContentSufficient reports whether static HTML can skip browser rendering
func IsContentSufficient(html string) bool {
	return Detect(html).Sufficient
}

// VisibleTextLength strips script and style blocks and all tags, then counts
// the characters left after trimming.
func VisibleTextLength(html string) int {
	text := scriptBlock.ReplaceAllString(html, "")
	text = styleBlock.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, "")
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
