package output

import (
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	urlutil "github.com/law-makers/sitescrape/internal/utils/url"
	"github.com/law-makers/sitescrape/pkg/models"
)

// newConverter returns a GitHub flavored converter that resolves links
// against baseURL.
func newConverter(baseURL string) *md.Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}

			resolved := urlutil.ResolveURL(baseURL, href)
			title, hasTitle := selec.Attr("title")
			var titlePart string
			if hasTitle {
				titlePart = fmt.Sprintf(" %q", title)
			}
			str := fmt.Sprintf("[%s](%s)%s", strings.TrimSpace(selec.Text()), resolved, titlePart)
			return &str
		},
	})
	return converter
}

// WriteMarkdown renders result as a Markdown document, one heading per
// section, followed by any recorded errors.
func WriteMarkdown(w io.Writer, result *models.ScrapeResult) error {
	var b strings.Builder

	title := result.Meta.Title
	if title == "" {
		title = result.URL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Source: %s\n\n", result.URL)
	if result.Meta.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", result.Meta.Description)
	}

	converters := make(map[string]*md.Converter)
	for _, s := range result.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Label)
		fmt.Fprintf(&b, "_%s · %s_\n\n", s.Type, s.ID)

		body, err := sectionMarkdown(converters, s)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.ID, err)
		}
		if body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}

	if len(result.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- `%s`: %s\n", e.Phase, e.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sectionMarkdown(converters map[string]*md.Converter, s models.Section) (string, error) {
	if s.RawHTML == "" {
		return s.Content.Text, nil
	}

	cleaned, err := CleanHTML(s.RawHTML)
	if err != nil {
		return "", err
	}

	converter, ok := converters[s.SourceURL]
	if !ok {
		converter = newConverter(s.SourceURL)
		converters[s.SourceURL] = converter
	}
	out, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return s.Content.Text, nil
	}
	return out, nil
}
