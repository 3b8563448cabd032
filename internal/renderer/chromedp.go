package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/sitescribe/sitescribe/internal/scrape"
)

// Config controls engine behavior shared by both engines.
type Config struct {
	UserAgent   string
	SettleDelay time.Duration
	DomainQPS   float64
}

// ChromeEngine renders pages with headless Chrome via chromedp. One engine
// spans a whole run; each page gets its own tab through NewSession.
type ChromeEngine struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	limiter     *domainLimiter
}

// NewChromeEngine builds the exec allocator for the run. The browser process
// starts lazily on the first session.
func NewChromeEngine(cfg Config) *ChromeEngine {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 250 * time.Millisecond
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeEngine{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		limiter:     newDomainLimiter(cfg.DomainQPS),
	}
}

// NewSession opens a fresh tab for one page.
func (e *ChromeEngine) NewSession(_ context.Context) (scrape.PageSession, error) {
	tabCtx, tabCancel := chromedp.NewContext(e.allocator)
	return &chromeSession{
		engine: e,
		ctx:    tabCtx,
		cancel: tabCancel,
	}, nil
}

// Close tears down the allocator and the browser process with it.
func (e *ChromeEngine) Close(_ context.Context) error {
	e.allocCancel()
	return nil
}

type chromeSession struct {
	engine   *ChromeEngine
	ctx      context.Context
	cancel   context.CancelFunc
	location string
}

// Navigate loads the address, waits for body readiness plus the settle delay,
// and records the resolved location. The caller's context bounds the whole
// sequence.
func (s *chromeSession) Navigate(ctx context.Context, rawURL string) error {
	if err := s.engine.limiter.wait(ctx, rawURL); err != nil {
		return err
	}

	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var location string
	actions := []chromedp.Action{
		s.networkSetupAction(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.engine.cfg.SettleDelay),
		chromedp.Location(&location),
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if location == "" {
		location = rawURL
	}
	s.location = location
	return nil
}

func (s *chromeSession) Location() string {
	return s.location
}

// HTML snapshots the rendered document.
func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot html: %w", err)
	}
	return html, nil
}

// Screenshot captures the full scrollable page as PNG.
func (s *chromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}

// boundedCtx couples the tab context with the caller's deadline so a hung
// navigation cannot outlive the per-page timeout.
func (s *chromeSession) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if ua := s.engine.cfg.UserAgent; ua != "" {
			if err := emulation.SetUserAgentOverride(ua).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}
