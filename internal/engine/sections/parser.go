// Package sections partitions a rendered document into classified, labeled
// content sections.
package sections

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/sitescrape/internal/engine/metadata"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/rs/zerolog/log"
)

const (
	maxTextRunes  = 2000
	maxRawRunes   = 5000
	maxLabelRunes = 50
	labelWords    = 7
	truncMarker   = "..."
)

var (
	mainSel       = cascadia.MustCompile(`main, [role='main']`)
	subsectionSel = cascadia.MustCompile(`section, article, div[class*='section']`)
	landmarkSel   = cascadia.MustCompile(`header, nav, main, section, article, aside, footer`)
	bodySel       = cascadia.MustCompile(`body`)
	strippedSel   = cascadia.MustCompile(`script, style`)
)

// Page is the sectionizer output for one document
type Page struct {
	Meta     models.Meta
	Sections []models.Section
}

// Extractor turns rendered HTML into metadata and sections
type Extractor interface {
	Extract(html, baseURL string) (*Page, error)
}

// Sectionizer is the default Extractor. It holds no state between calls.
type Sectionizer struct{}

// New returns a Sectionizer
func New() *Sectionizer {
	return &Sectionizer{}
}

// Extract parses html and returns its metadata and sections
func (s *Sectionizer) Extract(html, baseURL string) (*Page, error) {
	p, err := NewParser(html, baseURL)
	if err != nil {
		return nil, err
	}
	page := &Page{
		Meta:     p.ExtractMeta(),
		Sections: p.ExtractSections(),
	}
	log.Debug().
		Str("url", baseURL).
		Int("sections", len(page.Sections)).
		Msg("Document sectionized")
	return page, nil
}

// Parser owns one parsed document and its section counter
type Parser struct {
	doc     *goquery.Document
	baseURL string
	counter int
}

// NewParser parses html. Script and style subtrees are dropped up front so
// neither visible text nor raw markup carries them.
func NewParser(html, baseURL string) (*Parser, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewParserFromDocument(doc, baseURL), nil
}

// NewParserFromDocument wraps an already parsed document
func NewParserFromDocument(doc *goquery.Document, baseURL string) *Parser {
	doc.FindMatcher(strippedSel).Remove()
	return &Parser{doc: doc, baseURL: baseURL}
}

// ExtractMeta returns the document metadata
func (p *Parser) ExtractMeta() models.Meta {
	return metadata.ExtractMeta(p.doc)
}

// ExtractSections returns the document sections. The result is never empty.
func (p *Parser) ExtractSections() []models.Section {
	var candidates *goquery.Selection

	if main := p.doc.FindMatcher(mainSel).First(); main.Length() > 0 {
		candidates = main.FindMatcher(subsectionSel)
		if candidates.Length() == 0 {
			candidates = main
		}
	} else {
		candidates = p.doc.FindMatcher(bodySel).First().FindMatcher(landmarkSel)
	}

	sections := make([]models.Section, 0, candidates.Length())
	candidates.Each(func(_ int, el *goquery.Selection) {
		section := p.parseSection(el)
		if section.Content.HasContent() {
			sections = append(sections, section)
		}
	})

	if len(sections) == 0 {
		sections = append(sections, p.fallbackSection())
	}
	return sections
}

// parseSection builds one section. The counter advances even when the
// caller later discards the section.
func (p *Parser) parseSection(el *goquery.Selection) models.Section {
	p.counter++

	sectionType := Classify(el)
	content := ExtractContent(el, p.baseURL)
	raw, truncated := rawHTML(el)

	return models.Section{
		ID:        fmt.Sprintf("%s-%d", sectionType, p.counter),
		Type:      sectionType,
		Label:     GenerateLabel(el, content),
		SourceURL: p.baseURL,
		Content:   content,
		RawHTML:   raw,
		Truncated: truncated,
	}
}

func (p *Parser) fallbackSection() models.Section {
	if body := p.doc.FindMatcher(bodySel).First(); body.Length() > 0 {
		return p.parseSection(body)
	}

	content := models.NewContent()
	content.Text = "No content extracted"
	return models.Section{
		ID:        "fallback-1",
		Type:      models.SectionUnknown,
		Label:     "Page Content",
		SourceURL: p.baseURL,
		Content:   content,
	}
}

// rawHTML serializes the outer markup, cut to maxRawRunes
func rawHTML(el *goquery.Selection) (string, bool) {
	raw, err := goquery.OuterHtml(el)
	if err != nil {
		return "", false
	}
	cut, truncated := metadata.Truncate(raw, maxRawRunes)
	if truncated {
		cut += truncMarker
	}
	return cut, truncated
}
