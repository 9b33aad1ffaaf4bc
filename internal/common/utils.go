package common

import (
	"net/url"
	"strings"
)

// AbsoluteURL resolves href against the page it was found on, the way a
// browser reports an element's href property. Unparseable input is returned
// trimmed but otherwise unchanged.
func AbsoluteURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}

// Truncate shortens s to n runes for log output.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
