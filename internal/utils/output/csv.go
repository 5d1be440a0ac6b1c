package output

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/law-makers/sitescrape/pkg/models"
)

var csvHeader = []string{"id", "type", "label", "text", "links", "images"}

// WriteCSV writes one row per section. Links and images are joined with
// spaces since hrefs never contain one after resolution.
func WriteCSV(w io.Writer, result *models.ScrapeResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range result.Sections {
		links := make([]string, 0, len(s.Content.Links))
		for _, l := range s.Content.Links {
			links = append(links, l.Href)
		}
		images := make([]string, 0, len(s.Content.Images))
		for _, img := range s.Content.Images {
			images = append(images, img.Src)
		}

		row := []string{
			s.ID,
			string(s.Type),
			s.Label,
			s.Content.Text,
			strings.Join(links, " "),
			strings.Join(images, " "),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
