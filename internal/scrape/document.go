package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/sitescribe/sitescribe/internal/extract"
)

// ComposeDocument renders the front matter block followed by the Markdown
// body. The front matter keys appear in fixed order so documents diff
// cleanly between runs.
func ComposeDocument(meta extract.Meta, pageURL, normalizedURL string, scrapedAt time.Time, depth int, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", quoteFrontMatter(meta.Title))
	fmt.Fprintf(&b, "url: %s\n", quoteFrontMatter(pageURL))
	fmt.Fprintf(&b, "normalizedUrl: %s\n", quoteFrontMatter(normalizedURL))
	fmt.Fprintf(&b, "description: %s\n", quoteFrontMatter(meta.Description))
	fmt.Fprintf(&b, "date: %s\n", scrapedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "depth: %d\n", depth)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// quoteFrontMatter wraps a value in double quotes, escaping embedded quotes
// so titles with punctuation stay valid YAML.
func quoteFrontMatter(v string) string {
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
