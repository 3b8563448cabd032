package scrape

import (
	"net/url"
	"strings"
)

// Normalize strips the fragment from an address and returns the canonical
// string form. It is total: unparseable input is returned unchanged, so the
// result is always usable as a deduplication key. Normalizing an already
// normalized address yields itself.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// DocumentName derives the Markdown file name for a normalized address. The
// path component has its separators replaced by underscores, a single leading
// underscore stripped, and an empty result defaults to "index". The name is
// the join key between the page document, its index entry, and its screenshot.
func DocumentName(normalizedURL string) string {
	p := ""
	if u, err := url.Parse(normalizedURL); err == nil {
		p = u.Path
	}
	name := strings.ReplaceAll(p, "/", "_")
	name = strings.TrimPrefix(name, "_")
	if name == "" {
		name = "index"
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}

// ScreenshotName maps a document name to its screenshot counterpart.
func ScreenshotName(documentName string) string {
	return strings.TrimSuffix(documentName, ".md") + ".png"
}

// SameDomain reports whether link may be followed from page. Host-relative
// links are always in-domain; absolute links qualify only when their host
// matches the originating page's host.
func SameDomain(page, link *url.URL) bool {
	if link.Host == "" {
		return true
	}
	return strings.EqualFold(page.Hostname(), link.Hostname())
}

// SkippableScheme reports whether a link target points outside the crawlable
// web (javascript: handlers, mailto: addresses).
func SkippableScheme(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:")
}
