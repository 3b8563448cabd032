package renderer

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/sitescribe/sitescribe/internal/scrape"
)

// StaticEngine fetches pages over plain HTTP using Colly. It renders no
// JavaScript and cannot take screenshots, but it is fast and needs no
// browser binary.
type StaticEngine struct {
	cfg     Config
	base    *colly.Collector
	limiter *domainLimiter
}

// NewStaticEngine builds the base collector that page sessions clone.
func NewStaticEngine(cfg Config) *StaticEngine {
	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	return &StaticEngine{
		cfg:     cfg,
		base:    c,
		limiter: newDomainLimiter(cfg.DomainQPS),
	}
}

// NewSession clones the base collector for a single page fetch.
func (e *StaticEngine) NewSession(_ context.Context) (scrape.PageSession, error) {
	return &staticSession{engine: e, collector: e.base.Clone()}, nil
}

// Close is a no-op; the collector holds no long-lived resources.
func (e *StaticEngine) Close(_ context.Context) error {
	return nil
}

type staticSession struct {
	engine    *StaticEngine
	collector *colly.Collector
	location  string
	body      []byte
}

func (s *staticSession) Navigate(ctx context.Context, rawURL string) error {
	if err := s.engine.limiter.wait(ctx, rawURL); err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		s.collector.SetRequestTimeout(time.Until(deadline))
	}

	var fetchErr error
	s.collector.OnResponse(func(r *colly.Response) {
		s.location = r.Request.URL.String()
		s.body = append([]byte(nil), r.Body...)
	})
	s.collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- s.collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", rawURL, err)
		}
		if fetchErr != nil {
			return fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
	}
	if s.location == "" {
		s.location = rawURL
	}
	return nil
}

func (s *staticSession) Location() string {
	return s.location
}

func (s *staticSession) HTML(_ context.Context) (string, error) {
	if s.body == nil {
		return "", fmt.Errorf("no document fetched")
	}
	return string(s.body), nil
}

func (s *staticSession) Screenshot(_ context.Context) ([]byte, error) {
	return nil, scrape.ErrScreenshotUnsupported
}

func (s *staticSession) Close() error {
	return nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
