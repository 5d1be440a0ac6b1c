package sections

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/sitescrape/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const baseURL = "https://example.com/docs/"

func extract(t *testing.T, doc string) *Page {
	t.Helper()
	page, err := New().Extract(doc, baseURL)
	require.NoError(t, err)
	return page
}

func TestExtractSections_MainWithTwoSections(t *testing.T) {
	page := extract(t, `<html><body><main>
		<section><h2>First</h2><p>The first block of content on this page.</p></section>
		<section><h2>Second</h2><p>The second block of content on this page.</p></section>
	</main></body></html>`)

	require.Len(t, page.Sections, 2)
	for i, s := range page.Sections {
		assert.Equal(t, models.SectionDefault, s.Type)
		assert.Equal(t, baseURL, s.SourceURL)
		assert.False(t, s.Truncated)
		assert.True(t, strings.HasPrefix(s.RawHTML, "<section>"), "section %d raw markup", i)
	}
	assert.Equal(t, "section-1", page.Sections[0].ID)
	assert.Equal(t, "First", page.Sections[0].Label)
	assert.Equal(t, "section-2", page.Sections[1].ID)
	assert.Equal(t, "Second", page.Sections[1].Label)
}

func TestExtractSections_MainWithoutSubsections(t *testing.T) {
	page := extract(t, `<body><div role="main"><h1>Only</h1><p>Body copy.</p></div></body>`)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, "section-1", page.Sections[0].ID)
	assert.Equal(t, []string{"Only"}, page.Sections[0].Content.Headings)
}

func TestExtractSections_SectionLikeDivs(t *testing.T) {
	page := extract(t, `<body><main>
		<div class="section-intro"><h2>Intro</h2></div>
		<div class="plain"><h2>Ignored as a candidate</h2></div>
	</main></body>`)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, "Intro", page.Sections[0].Label)
}

func TestExtractSections_BodyLandmarksCounterSkipsDiscarded(t *testing.T) {
	page := extract(t, `<body>
		<header></header>
		<nav><a href="/a">A</a></nav>
		<section id="pricing-plans"><h2>Plans</h2></section>
		<footer><p>Copyright 2024 Example Corporation</p></footer>
	</body>`)

	ids := make([]string, 0, len(page.Sections))
	for _, s := range page.Sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"nav-2", "pricing-3", "footer-4"}, ids)
}

func TestExtractSections_IDsUniqueAndIncreasing(t *testing.T) {
	page := extract(t, `<body>
		<header class="hero"><h1>Welcome</h1></header>
		<nav><a href="/one">One</a><a href="/two">Two</a></nav>
		<article><h2>News</h2><section><h3>Nested</h3></section></article>
		<aside><p>Some sidebar text that is long enough.</p></aside>
		<footer><a href="/legal">Legal</a></footer>
	</body>`)

	seen := map[string]bool{}
	last := 0
	for _, s := range page.Sections {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true

		idx := strings.LastIndex(s.ID, "-")
		require.Positive(t, idx)
		var n int
		for _, r := range s.ID[idx+1:] {
			n = n*10 + int(r-'0')
		}
		assert.Greater(t, n, last)
		last = n
	}
	assert.Len(t, page.Sections, 6)
}

func TestExtractSections_Fallback(t *testing.T) {
	inputs := []string{
		"",
		"<html></html>",
		"<html><body>   </body></html>",
		"<p>tiny</p>",
	}
	for _, in := range inputs {
		page := extract(t, in)
		require.Len(t, page.Sections, 1, "input %q", in)
		assert.Equal(t, "section-1", page.Sections[0].ID, "fallback is built from <body>")
	}
}

func TestExtractSections_FallbackAfterDiscardedCandidates(t *testing.T) {
	page := extract(t, `<html><body><section></section><aside> </aside></body></html>`)

	require.Len(t, page.Sections, 1)
	assert.Equal(t, "section-3", page.Sections[0].ID)
}

func TestExtractSections_PlaceholderWithoutBody(t *testing.T) {
	doc := goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	sections := NewParserFromDocument(doc, baseURL).ExtractSections()

	require.Len(t, sections, 1)
	s := sections[0]
	assert.Equal(t, "fallback-1", s.ID)
	assert.Equal(t, models.SectionUnknown, s.Type)
	assert.Equal(t, "Page Content", s.Label)
	assert.Equal(t, "No content extracted", s.Content.Text)
	assert.NotNil(t, s.Content.Links)
}

func TestExtractSections_Truncation(t *testing.T) {
	long := strings.Repeat("a", 6000)
	page := extract(t, `<body><main><section><h2>Long</h2><p>`+long+`</p></section></main></body>`)

	require.Len(t, page.Sections, 1)
	s := page.Sections[0]
	assert.Len(t, []rune(s.Content.Text), maxTextRunes)
	assert.True(t, s.Truncated)
	assert.Len(t, []rune(s.RawHTML), maxRawRunes+len(truncMarker))
	assert.True(t, strings.HasSuffix(s.RawHTML, truncMarker))
}

func TestExtract_Deterministic(t *testing.T) {
	doc := `<html lang="fr"><head><title>T</title></head><body>
		<nav><a href="x">X</a></nav><section><h2>S</h2><ul><li>1</li></ul></section></body></html>`

	first := extract(t, doc)
	second := extract(t, doc)
	assert.Equal(t, first, second)
	assert.Equal(t, "fr", first.Meta.Language)
	assert.Equal(t, "T", first.Meta.Title)
}
