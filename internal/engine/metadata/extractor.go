// internal/engine/metadata/extractor.go
package metadata

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/sitescrape/pkg/models"
)

// ExtractMeta reads title, description, language and canonical URL from doc.
// Title and description fall back to their OpenGraph counterparts when empty.
func ExtractMeta(doc *goquery.Document) models.Meta {
	meta := models.DefaultMeta()
	if doc == nil {
		return meta
	}

	meta.Title = CleanText(doc.Find("title").First().Text())
	if meta.Title == "" {
		meta.Title = attr(doc, `meta[property="og:title"]`, "content")
	}

	meta.Description = attr(doc, `meta[name="description"]`, "content")
	if meta.Description == "" {
		meta.Description = attr(doc, `meta[property="og:description"]`, "content")
	}

	if lang := attr(doc, "html", "lang"); lang != "" {
		meta.Language = lang
	}

	if sel := doc.Find(`link[rel="canonical"]`).First(); sel.Length() > 0 {
		if href, ok := sel.Attr("href"); ok {
			meta.Canonical = &href
		}
	}

	return meta
}

// attr returns the named attribute of the first match of selector, or ""
func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return v
}
