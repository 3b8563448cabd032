package scrape

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildIndex renders the crawl index document. Entries are sorted
// lexicographically by normalized address so the index is deterministic for
// a given set of visited pages. Each entry links to the page's Markdown
// document under its first-seen original address.
func BuildIndex(stats RunStats, frontier *Frontier) string {
	visited := frontier.Visited()
	sort.Strings(visited)

	var b strings.Builder
	b.WriteString("# Crawl Index\n\n")
	fmt.Fprintf(&b, "Start URL: %s\n\n", stats.StartURL)
	fmt.Fprintf(&b, "Start time: %s\n\n", stats.StartTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Max depth: %d\n\n", stats.MaxDepth)
	fmt.Fprintf(&b, "Pages scraped: %d\n\n", stats.PagesScraped)
	fmt.Fprintf(&b, "Markdown files: %d\n\n", stats.MarkdownFiles)

	for _, normalized := range visited {
		fmt.Fprintf(&b, "- [%s](./%s)\n", frontier.Original(normalized), DocumentName(normalized))
	}
	b.WriteString("\n")
	return b.String()
}
