package resolver

import (
	"strings"
)

// Slug lowercases name and replaces spaces with hyphens. No other
// punctuation is touched.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// Candidates returns the detail-page URLs to probe for name, in probe order.
// The list always has five entries.
func Candidates(baseURL, citySlug, name string) []string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	slug := Slug(name)
	suffixes := []string{
		"-1",
		"-" + citySlug + "-1",
		"-" + citySlug,
		"-" + citySlug + "-2",
		"",
	}

	urls := make([]string, len(suffixes))
	for i, suffix := range suffixes {
		urls[i] = baseURL + slug + suffix
	}
	return urls
}
