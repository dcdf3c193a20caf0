package model

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var docTextPolicy = bluemonday.StrictPolicy()

// plainText strips markup from document supplied titles and descriptions.
// OpenAPI allows rich text there; labels and prompt help are shown on a
// terminal.
func plainText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(docTextPolicy.Sanitize(text)))
}
