package metadata

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractMeta(t *testing.T) {
	doc := docFrom(t, `<html lang="de"><head>
		<title>  Hello
		World </title>
		<meta name="description" content="A page">
		<link rel="canonical" href="https://example.com/canonical">
	</head><body></body></html>`)

	meta := ExtractMeta(doc)
	assert.Equal(t, "Hello World", meta.Title)
	assert.Equal(t, "A page", meta.Description)
	assert.Equal(t, "de", meta.Language)
	require.NotNil(t, meta.Canonical)
	assert.Equal(t, "https://example.com/canonical", *meta.Canonical)
}

func TestExtractMeta_OpenGraphFallbacks(t *testing.T) {
	doc := docFrom(t, `<html><head>
		<title></title>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG Description">
	</head><body></body></html>`)

	meta := ExtractMeta(doc)
	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG Description", meta.Description)
	assert.Equal(t, "en", meta.Language)
	assert.Nil(t, meta.Canonical)
}

func TestExtractMeta_NilDocument(t *testing.T) {
	meta := ExtractMeta(nil)
	assert.Equal(t, "en", meta.Language)
	assert.Empty(t, meta.Title)
}

func TestTruncate(t *testing.T) {
	s, cut := Truncate("héllo", 3)
	assert.Equal(t, "hél", s)
	assert.True(t, cut)

	s, cut = Truncate("abc", 3)
	assert.Equal(t, "abc", s)
	assert.False(t, cut)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Pricing Plans", TitleCase("pricing plans"))
	assert.Equal(t, "Main  Content Id", TitleCase("mAIN  content ID"))
	assert.Equal(t, "Step2Go", TitleCase("step2go"))
}
