package sections

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/law-makers/sitescrape/internal/engine/metadata"
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
	"golang.org/x/net/html"
)

var (
	headingSel = cascadia.MustCompile(`h1, h2, h3, h4, h5, h6`)
	linkSel    = cascadia.MustCompile(`a[href]`)
	imageSel   = cascadia.MustCompile(`img[src]`)
	itemSel    = cascadia.MustCompile(`li`)
	tableSel   = cascadia.MustCompile(`table`)
	rowSel     = cascadia.MustCompile(`tr`)
	cellSel    = cascadia.MustCompile(`td, th`)
)

// ExtractContent collects the structured content of el. Relative link and
// image URLs are resolved against baseURL.
func ExtractContent(el *goquery.Selection, baseURL string) models.Content {
	content := models.NewContent()

	el.FindMatcher(headingSel).Each(func(_ int, h *goquery.Selection) {
		if text := textOf(h); text != "" {
			content.Headings = append(content.Headings, text)
		}
	})

	content.Text, _ = metadata.Truncate(visibleText(el.Nodes), maxTextRunes)

	el.FindMatcher(linkSel).Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		content.Links = append(content.Links, models.Link{
			Text: textOf(a),
			Href: urlutil.ResolveURL(baseURL, href),
		})
	})

	el.FindMatcher(imageSel).Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			return
		}
		content.Images = append(content.Images, models.Image{
			Src: urlutil.ResolveURL(baseURL, src),
			Alt: img.AttrOr("alt", ""),
		})
	})

	el.FindMatcher(listSel).Each(func(_ int, list *goquery.Selection) {
		items := list.FindMatcher(itemSel).Map(func(_ int, li *goquery.Selection) string {
			return textOf(li)
		})
		if len(items) > 0 {
			content.Lists = append(content.Lists, items)
		}
	})

	el.FindMatcher(tableSel).Each(func(_ int, table *goquery.Selection) {
		if rows := parseTable(table); len(rows) > 0 {
			content.Tables = append(content.Tables, rows)
		}
	})

	return content
}

// parseTable returns the rows of table as cell texts, skipping empty rows
func parseTable(table *goquery.Selection) [][]string {
	var rows [][]string
	table.FindMatcher(rowSel).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.FindMatcher(cellSel).Map(func(_ int, cell *goquery.Selection) string {
			return textOf(cell)
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func textOf(s *goquery.Selection) string {
	return visibleText(s.Nodes)
}

// visibleText joins the whitespace-normalized text of nodes, skipping any
// script or style subtree still present.
func visibleText(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.TextNode:
			for _, f := range strings.Fields(n.Data) {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(f)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}
