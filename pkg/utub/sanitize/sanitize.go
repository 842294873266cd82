// Package sanitize validates free-text input (UTub names, descriptions,
// URL notes, tag strings) against HTML-significant markup.
package sanitize

import (
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ErrMarkup = errors.New("input contains markup")

var strict = bluemonday.StrictPolicy()

// Text trims the input and rejects it if stripping markup would change it.
// An all-whitespace input collapses to the empty string.
func Text(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", nil
	}

	// StrictPolicy strips all tags and entity-escapes the remainder, so
	// unescaping the result of a clean input round-trips to the input.
	stripped := html.UnescapeString(strict.Sanitize(trimmed))
	if stripped != trimmed {
		return "", ErrMarkup
	}
	return trimmed, nil
}
