// Package urlnorm canonicalises URLs so that equivalent links compare equal
// as plain strings across the frontier, the visited set and the index.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// ErrMalformedURL is returned when a link cannot be turned into an absolute
// http(s) URL.
var ErrMalformedURL = errors.New("malformed url")

const normalizationFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagUppercaseEscapes |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagEncodeNecessaryEscapes |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveEmptyPortSeparator |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveUnnecessaryHostDots |
	purell.FlagRemoveFragment

// Markers that terminate the useful part of a link.
var cutMarkers = []string{"?", "#", "javascript:"}

// Normalize resolves raw against base and returns its canonical form:
// scheme://host[:port]/path with no query, fragment, user info or trailing
// slash. An empty raw value resolves to base itself.
func Normalize(raw, base string) (string, error) {
	raw = cutAtMarkers(strings.TrimSpace(raw))

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedURL, raw, err)
	}

	if !u.IsAbs() {
		if base == "" {
			return "", fmt.Errorf("%w: %q is relative and no base was given", ErrMalformedURL, raw)
		}

		baseURL, err := url.Parse(strings.TrimSpace(base))
		if err != nil {
			return "", fmt.Errorf("%w: base %q: %v", ErrMalformedURL, base, err)
		}

		u = baseURL.ResolveReference(u)
	}

	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme in %q", ErrMalformedURL, u.String())
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrMalformedURL, u.String())
	}

	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	normalized := strings.TrimRight(purell.NormalizeURL(u, normalizationFlags), "/")

	return collapseQuestion(normalized), nil
}

// NormalizePartial applies the base-less subset of Normalize: marker
// cutting, trailing slash removal and question collapsing. It is used for
// seed lists and reloaded visited sets where no base URL is available and
// never fails.
func NormalizePartial(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.ContainsAny(raw, " \t") {
		for _, token := range strings.Fields(raw) {
			if len(token) > 2 {
				raw = token
				break
			}
		}
	}

	raw = strings.TrimRight(cutAtMarkers(raw), "/")

	return collapseQuestion(raw)
}

// HostKey returns the scheme and host portion of u ("https://example.com")
// or an empty string if u cannot be parsed.
func HostKey(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return ""
	}

	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)
}

// Host returns the lower-cased host (with port, if any) of u.
func Host(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Host)
}

func cutAtMarkers(raw string) string {
	cut := len(raw)
	for _, marker := range cutMarkers {
		if idx := strings.Index(raw, marker); idx != -1 && idx < cut {
			cut = idx
		}
	}

	return raw[:cut]
}
