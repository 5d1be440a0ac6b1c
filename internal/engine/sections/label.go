package sections

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/sitescrape/internal/engine/metadata"
	"github.com/law-makers/sitescrape/pkg/models"
)

const untitledLabel = "Untitled Section"

var idSeparators = strings.NewReplacer("-", " ", "_", " ")

// GenerateLabel picks a short human label for a section: its first heading,
// then its humanized id, then the opening words of its text.
func GenerateLabel(el *goquery.Selection, content models.Content) string {
	if len(content.Headings) > 0 {
		label, _ := metadata.Truncate(content.Headings[0], maxLabelRunes)
		return label
	}

	if id := el.AttrOr("id", ""); id != "" {
		label, _ := metadata.Truncate(metadata.TitleCase(idSeparators.Replace(id)), maxLabelRunes)
		return label
	}

	if words := strings.Fields(content.Text); len(words) > 0 {
		if len(words) > labelWords {
			words = words[:labelWords]
		}
		label := strings.Join(words, " ")
		if len(words) == labelWords {
			label += truncMarker
		}
		return label
	}

	return untitledLabel
}
