package output

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	strippedSel = cascadia.MustCompile("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas")
	anySel      = cascadia.MustCompile("*")
)

// keptAttrs lists the attributes that survive cleaning, per tag
var keptAttrs = map[string][]string{
	"a":   {"href", "title"},
	"img": {"src", "alt", "title"},
}

// CleanHTML strips non-content elements and all attributes except link and
// image targets, returning the body markup.
func CleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.FindMatcher(strippedSel).Remove()

	doc.FindMatcher(anySel).Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		var attrs []html.Attribute
		for _, attr := range node.Attr {
			if keep(node.Data, attr.Key) {
				attrs = append(attrs, attr)
			}
		}
		node.Attr = attrs
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}
	out, err := body.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func keep(tag, key string) bool {
	for _, k := range keptAttrs[tag] {
		if k == key {
			return true
		}
	}
	return false
}
