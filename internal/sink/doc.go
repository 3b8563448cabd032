// Package sink persists crawl artifacts: Markdown documents, screenshots,
// the crawl index, and run metadata.
package sink
