// Package urlnorm normalizes user-supplied URL strings so that the global
// URL table de-duplicates by canonical form. Normalize is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
package urlnorm

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var ErrInvalidURL = errors.New("invalid url")

const normalizationFlags = purell.FlagsUsuallySafeGreedy | purell.FlagRemoveFragment

// Normalize trims the input, defaults the scheme to https when absent, and
// canonicalizes the result. Only http and https URLs with a host are
// accepted.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	normalized, err := purell.NormalizeURLString(s, normalizationFlags)
	if err != nil {
		return "", ErrInvalidURL
	}
	return normalized, nil
}
