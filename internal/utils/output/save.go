package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/sitescrape/pkg/models"
)

// Format is an output encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// FormatFor picks the encoding from a file extension, defaulting to JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".csv":
		return FormatCSV
	default:
		return FormatJSON
	}
}

// Extension returns the file extension used for f
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// Write encodes result to w in format f
func Write(w io.Writer, result *models.ScrapeResult, f Format) error {
	switch f {
	case FormatMarkdown:
		return WriteMarkdown(w, result)
	case FormatCSV:
		return WriteCSV(w, result)
	case FormatJSON, "":
		return WriteJSON(w, result)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// Save writes result to path, choosing the encoding from its extension
func Save(result *models.ScrapeResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(file, result, FormatFor(path)); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
