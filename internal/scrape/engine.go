package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/config"
	"github.com/sitescribe/sitescribe/internal/extract"
	"github.com/sitescribe/sitescribe/internal/progress"
)

// Crawler runs a breadth-first crawl from the configured start address,
// converting each rendered page to Markdown with a screenshot alongside.
// The crawl loop is strictly sequential; a page failure is logged and the
// crawl moves on.
type Crawler struct {
	cfg       config.Config
	engine    RenderEngine
	sink      ArtifactSink
	robots    RobotsPolicy
	recorder  PageRecorder
	publisher Publisher
	hasher    Hasher
	clock     Clock
	emitter   progress.Emitter
	logger    *zap.Logger
}

// CrawlerOption customizes optional collaborators.
type CrawlerOption func(*Crawler)

// WithRecorder attaches a page-record store.
func WithRecorder(r PageRecorder) CrawlerOption {
	return func(c *Crawler) { c.recorder = r }
}

// WithPublisher attaches a run-completion publisher.
func WithPublisher(p Publisher) CrawlerOption {
	return func(c *Crawler) { c.publisher = p }
}

// NewCrawler assembles a Crawler. engine, sink, robots, hasher, clock, and
// emitter are required; recorder and publisher arrive via options.
func NewCrawler(
	cfg config.Config,
	engine RenderEngine,
	sink ArtifactSink,
	robots RobotsPolicy,
	hasher Hasher,
	clock Clock,
	emitter progress.Emitter,
	logger *zap.Logger,
	opts ...CrawlerOption,
) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.Nop{}
	}
	c := &Crawler{
		cfg:     cfg,
		engine:  engine,
		sink:    sink,
		robots:  robots,
		hasher:  hasher,
		clock:   clock,
		emitter: emitter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the crawl until the frontier drains or the context ends, then
// writes the index and run metadata. The returned stats are final.
func (c *Crawler) Run(ctx context.Context) (RunStats, error) {
	runID := uuid.New()
	stats := RunStats{
		StartURL:  c.cfg.Crawl.StartURL,
		StartTime: c.clock.Now(),
		MaxDepth:  c.cfg.Crawl.MaxDepth,
	}
	c.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		Stage: progress.StageRunStart,
	})
	c.logger.Info("run started",
		zap.String("run_id", runID.String()),
		zap.String("start_url", stats.StartURL),
		zap.Int("max_depth", stats.MaxDepth),
	)

	frontier := NewFrontier(c.cfg.Crawl.StartURL)
	for {
		if err := ctx.Err(); err != nil {
			c.emitRunError(runID, err)
			return stats, fmt.Errorf("crawl canceled: %w", err)
		}
		entry, ok := frontier.Pop()
		if !ok {
			break
		}
		normalized := Normalize(entry.URL)
		if frontier.IsVisited(normalized) {
			continue
		}
		if entry.Depth > c.cfg.Crawl.MaxDepth {
			continue
		}
		frontier.MarkVisited(normalized, entry.URL)

		c.emit(progress.Event{
			RunID: progress.UUIDToBytes(runID),
			Stage: progress.StagePageStart,
			URL:   entry.URL,
			Depth: entry.Depth,
		})
		pageStart := c.clock.Now()
		bytes, err := c.scrapePage(ctx, runID, frontier, entry, normalized, &stats)
		if err != nil {
			c.logger.Warn("page failed",
				zap.String("url", entry.URL),
				zap.Int("depth", entry.Depth),
				zap.Error(err),
			)
			c.emit(progress.Event{
				RunID: progress.UUIDToBytes(runID),
				Stage: progress.StagePageError,
				URL:   entry.URL,
				Depth: entry.Depth,
				Note:  err.Error(),
			})
			continue
		}
		c.emit(progress.Event{
			RunID: progress.UUIDToBytes(runID),
			Stage: progress.StagePageDone,
			URL:   entry.URL,
			Depth: entry.Depth,
			Bytes: bytes,
			Dur:   c.clock.Now().Sub(pageStart),
		})
	}

	if err := c.finish(ctx, runID, &stats, frontier); err != nil {
		c.emitRunError(runID, err)
		return stats, err
	}
	c.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		Stage: progress.StageRunDone,
		Dur:   stats.EndTime.Sub(stats.StartTime),
	})
	c.logger.Info("run finished",
		zap.String("run_id", runID.String()),
		zap.Int("pages_scraped", stats.PagesScraped),
		zap.Float64("duration_seconds", stats.Duration),
	)
	return stats, nil
}

// scrapePage renders one page, writes its Markdown document and screenshot,
// and enqueues same-domain children. It returns the document size in bytes.
func (c *Crawler) scrapePage(
	ctx context.Context,
	runID uuid.UUID,
	frontier *Frontier,
	entry FrontierEntry,
	normalized string,
	stats *RunStats,
) (int64, error) {
	session, err := c.engine.NewSession(ctx)
	if err != nil {
		return 0, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Warn("close session", zap.Error(closeErr))
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, c.cfg.NavTimeout())
	defer cancel()
	if err := session.Navigate(navCtx, entry.URL); err != nil {
		return 0, err
	}

	htmlStr, err := session.HTML(ctx)
	if err != nil {
		return 0, err
	}
	doc, err := extract.ParseDocument(htmlStr)
	if err != nil {
		return 0, err
	}

	location := session.Location()
	if location == "" {
		location = entry.URL
	}
	meta := extract.Metadata(doc, location)

	base, err := url.Parse(location)
	if err != nil {
		base, err = url.Parse(entry.URL)
		if err != nil {
			return 0, fmt.Errorf("parse page address %q: %w", entry.URL, err)
		}
	}

	body := extract.Markdown(extract.ContentRoot(doc), base)
	docName := DocumentName(normalized)
	document := ComposeDocument(meta, entry.URL, normalized, c.clock.Now(), entry.Depth, body)

	mdPath, err := c.sink.WriteDocument(ctx, docName, []byte(document))
	if err != nil {
		return 0, err
	}
	stats.MarkdownFiles++
	stats.PagesScraped++

	shotPath := c.captureScreenshot(ctx, session, docName)
	c.recordPage(ctx, runID, entry, normalized, meta.Title, mdPath, shotPath, document)

	if entry.Depth < c.cfg.Crawl.MaxDepth {
		c.enqueueLinks(ctx, frontier, extract.Links(doc), base, entry.Depth)
	}
	return int64(len(document)), nil
}

// captureScreenshot is best-effort: a page without a screenshot is still a
// scraped page.
func (c *Crawler) captureScreenshot(ctx context.Context, session PageSession, docName string) string {
	shot, err := session.Screenshot(ctx)
	if err != nil {
		if errors.Is(err, ErrScreenshotUnsupported) {
			c.logger.Debug("screenshot unsupported by engine")
		} else {
			c.logger.Warn("screenshot failed", zap.Error(err))
		}
		return ""
	}
	path, err := c.sink.WriteScreenshot(ctx, ScreenshotName(docName), shot)
	if err != nil {
		c.logger.Warn("write screenshot", zap.Error(err))
		return ""
	}
	return path
}

// recordPage is best-effort when a page store is configured.
func (c *Crawler) recordPage(
	ctx context.Context,
	runID uuid.UUID,
	entry FrontierEntry,
	normalized, title, mdPath, shotPath, document string,
) {
	if c.recorder == nil {
		return
	}
	rec := PageRecord{
		RunID:          runID.String(),
		URL:            entry.URL,
		NormalizedURL:  normalized,
		Title:          title,
		Depth:          entry.Depth,
		MarkdownPath:   mdPath,
		ScreenshotPath: shotPath,
		ContentHash:    c.hasher.Hash([]byte(document)),
		ScrapedAt:      c.clock.Now(),
	}
	if err := c.recorder.RecordPage(ctx, rec); err != nil {
		c.logger.Warn("record page", zap.String("url", entry.URL), zap.Error(err))
	}
}

// enqueueLinks pushes same-domain children discovered on the page. Links are
// resolved against the page's own navigated address, deduplicated within the
// page, and checked against robots policy before entering the frontier.
func (c *Crawler) enqueueLinks(
	ctx context.Context,
	frontier *Frontier,
	links []string,
	base *url.URL,
	depth int,
) {
	seen := make(map[string]struct{})
	for _, href := range links {
		if href == "" || SkippableScheme(href) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		if !SameDomain(base, ref) {
			continue
		}
		resolved := base.ResolveReference(ref).String()
		normalized := Normalize(resolved)
		if frontier.IsVisited(normalized) {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		if !c.robots.Allowed(ctx, resolved) {
			c.logger.Debug("link disallowed by robots", zap.String("url", resolved))
			continue
		}
		frontier.Push(FrontierEntry{URL: resolved, Depth: depth + 1})
	}
}

// finish writes the index and run metadata, finalizes stats, and publishes
// the run event.
func (c *Crawler) finish(ctx context.Context, runID uuid.UUID, stats *RunStats, frontier *Frontier) error {
	index := BuildIndex(*stats, frontier)
	if err := c.sink.WriteIndex(ctx, []byte(index)); err != nil {
		return err
	}

	stats.Finalize(c.clock.Now())
	metadata, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run metadata: %w", err)
	}
	if err := c.sink.WriteRunMetadata(ctx, metadata); err != nil {
		return err
	}

	if c.publisher != nil {
		event := RunEvent{RunID: runID.String(), Stats: *stats}
		if _, err := c.publisher.Publish(ctx, event); err != nil {
			c.logger.Warn("publish run event", zap.Error(err))
		}
	}
	return nil
}

func (c *Crawler) emit(evt progress.Event) {
	evt.TS = c.clock.Now()
	c.emitter.Emit(evt)
}

func (c *Crawler) emitRunError(runID uuid.UUID, err error) {
	c.emit(progress.Event{
		RunID: progress.UUIDToBytes(runID),
		Stage: progress.StageRunError,
		Note:  err.Error(),
	})
}
