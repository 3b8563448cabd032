package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Meta holds the front-matter fields pulled from a rendered page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
}

// contentSelectors are tried in order to locate the main content element;
// the first match wins and the whole body is the fallback.
var contentSelectors = []string{"main", "article", "#content", ".content", ".main"}

// ParseDocument parses a serialized DOM snapshot.
func ParseDocument(htmlStr string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Metadata extracts the page title, meta description, and canonical address.
// A missing description yields the empty string; a missing canonical link
// falls back to pageURL, the session's resolved address.
func Metadata(doc *goquery.Document, pageURL string) Meta {
	meta := Meta{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		Canonical:   pageURL,
	}
	if canonical := strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")); canonical != "" {
		meta.Canonical = resolveAgainst(pageURL, canonical)
	}
	return meta
}

// ContentRoot picks the element the Markdown conversion starts from.
func ContentRoot(doc *goquery.Document) *html.Node {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Get(0)
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body.Get(0)
	}
	return nil
}

// Links returns every hyperlink target in the rendered tree, in document
// order, without filtering or resolution.
func Links(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})
	return hrefs
}

func resolveAgainst(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
