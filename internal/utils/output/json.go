package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/sitescrape/pkg/models"
)

// WriteJSON writes an indented JSON encoding of result to w
func WriteJSON(w io.Writer, result *models.ScrapeResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

// ErrorPayload is the structured body emitted when a request is rejected
type ErrorPayload struct {
	Error   string        `json:"error"`
	Details []FieldDetail `json:"details"`
}

// FieldDetail names the offending field of a rejected request
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteInvalidRequest writes the JSON payload for a rejected request
func WriteInvalidRequest(w io.Writer, field, message string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ErrorPayload{
		Error:   "Invalid request",
		Details: []FieldDetail{{Field: field, Message: message}},
	})
}
