package scrape

import (
	"time"
)

// FrontierEntry is one unit of pending crawl work. URL carries the address in
// its original discovered form, fragment included; deduplication happens on
// the normalized form at pop time.
type FrontierEntry struct {
	URL   string
	Depth int
}

// RunStats is the single mutable accumulator for a crawl run. The pipeline
// increments its counters strictly sequentially; it is finalized once when the
// frontier drains and then persisted as metadata.json.
type RunStats struct {
	StartURL      string    `json:"startUrl"`
	StartTime     time.Time `json:"startTime"`
	MaxDepth      int       `json:"maxDepth"`
	PagesScraped  int       `json:"pagesScraped"`
	MarkdownFiles int       `json:"markdownFiles"`
	EndTime       time.Time `json:"endTime"`
	Duration      float64   `json:"duration"`
}

// Finalize stamps the end time and computes the run duration in seconds.
func (s *RunStats) Finalize(end time.Time) {
	s.EndTime = end
	s.Duration = end.Sub(s.StartTime).Seconds()
}

// PageRecord is persisted per scraped page when a page store is configured.
type PageRecord struct {
	RunID          string
	URL            string
	NormalizedURL  string
	Title          string
	Depth          int
	MarkdownPath   string
	ScreenshotPath string
	ContentHash    string
	ScrapedAt      time.Time
}

// RunEvent is the payload published once at run completion.
type RunEvent struct {
	RunID string   `json:"runId"`
	Stats RunStats `json:"stats"`
}
