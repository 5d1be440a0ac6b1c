package models

import "time"

// ScrapeResult is the single artifact produced for one scraped URL
type ScrapeResult struct {
	URL          string        `json:"url"`
	ScrapedAt    time.Time     `json:"scrapedAt"`
	Meta         Meta          `json:"meta"`
	Sections     []Section     `json:"sections"`
	Interactions Interactions  `json:"interactions"`
	Errors       []ErrorRecord `json:"errors"`
	RenderPath   RenderPath    `json:"renderPath,omitempty"`
	Transitions  []string      `json:"transitions,omitempty"`
}

// NewScrapeResult returns an empty result for url with the interaction log
// seeded with the original URL.
func NewScrapeResult(url string) *ScrapeResult {
	return &ScrapeResult{
		URL:          url,
		ScrapedAt:    time.Now().UTC(),
		Meta:         DefaultMeta(),
		Sections:     []Section{},
		Interactions: NewInteractions(url),
		Errors:       []ErrorRecord{},
	}
}

// AddError appends an error record. Records are never overwritten.
func (r *ScrapeResult) AddError(phase Phase, message string) {
	r.Errors = append(r.Errors, ErrorRecord{Message: message, Phase: phase})
}

// HasErrors reports whether any phase recorded an error
func (r *ScrapeResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Meta holds document level metadata
type Meta struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Canonical   *string `json:"canonical"`
}

// DefaultMeta returns metadata with the default language set
func DefaultMeta() Meta {
	return Meta{Language: "en"}
}

// SectionType is the inferred purpose of a section
type SectionType string

const (
	SectionHero    SectionType = "hero"
	SectionNav     SectionType = "nav"
	SectionFooter  SectionType = "footer"
	SectionPricing SectionType = "pricing"
	SectionFAQ     SectionType = "faq"
	SectionGrid    SectionType = "grid"
	SectionList    SectionType = "list"
	SectionDefault SectionType = "section"
	SectionUnknown SectionType = "unknown"
)

// Section is a discrete, labeled content region
type Section struct {
	ID        string      `json:"id"`
	Type      SectionType `json:"type"`
	Label     string      `json:"label"`
	SourceURL string      `json:"sourceUrl"`
	Content   Content     `json:"content"`
	RawHTML   string      `json:"rawHtml"`
	Truncated bool        `json:"truncated"`
}

// Content is the structured payload of a section
type Content struct {
	Headings []string     `json:"headings"`
	Text     string       `json:"text"`
	Links    []Link       `json:"links"`
	Images   []Image      `json:"images"`
	Lists    [][]string   `json:"lists"`
	Tables   [][][]string `json:"tables"`
}

// NewContent returns a Content whose slices encode as empty arrays
func NewContent() Content {
	return Content{
		Headings: []string{},
		Links:    []Link{},
		Images:   []Image{},
		Lists:    [][]string{},
		Tables:   [][][]string{},
	}
}

// HasContent reports whether the block carries anything worth keeping
func (c Content) HasContent() bool {
	return len(c.Headings) > 0 ||
		len([]rune(c.Text)) > 20 ||
		len(c.Links) > 0 ||
		len(c.Images) > 0
}

// Link is an anchor with an absolute href
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Image is an image with an absolute src
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Interactions records the simulated actions taken while rendering
type Interactions struct {
	Clicks  []string `json:"clicks"`
	Scrolls int      `json:"scrolls"`
	Pages   []string `json:"pages"`
}

// NewInteractions returns an interaction log starting at url
func NewInteractions(url string) Interactions {
	return Interactions{
		Clicks: []string{},
		Pages:  []string{url},
	}
}

// Phase tags where an error occurred
type Phase string

const (
	PhaseStaticFetch    Phase = "static_fetch"
	PhaseInitialization Phase = "initialization"
	PhaseNavigation     Phase = "navigation"
	PhaseScraping       Phase = "scraping"
	PhaseJSRender       Phase = "js_render"
)

// ErrorRecord is one recoverable or fatal error recorded in a result
type ErrorRecord struct {
	Message string `json:"message"`
	Phase   Phase  `json:"phase"`
}

// RenderPath is where the final content came from
type RenderPath string

const (
	RenderStatic  RenderPath = "static"
	RenderDynamic RenderPath = "dynamic"
)

// ScraperMode defines the engine mode to use
type ScraperMode string

const (
	ModeAuto    ScraperMode = "auto"
	ModeStatic  ScraperMode = "static"
	ModeDynamic ScraperMode = "dynamic"
)

// RequestOptions contains options for making scraping requests
type RequestOptions struct {
	URL     string
	Mode    ScraperMode
	Headers map[string]string
	Timeout time.Duration
	Proxy   string
	NoCache bool
}
