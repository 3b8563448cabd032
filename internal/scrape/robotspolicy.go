package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// AllowAllPolicy skips robots.txt checks entirely.
type AllowAllPolicy struct{}

// Allowed always returns true.
func (AllowAllPolicy) Allowed(context.Context, string) bool {
	return true
}

// RobotsEnforcer checks discovered links against each host's robots.txt.
// Files are fetched once per host and cached for the run. Fetch or parse
// failures fail open: a site that cannot express its policy does not block
// the crawl.
type RobotsEnforcer struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
	cache     sync.Map // host -> *robotstxt.RobotsData (nil entry = fail open)
}

// NewRobotsEnforcer builds an enforcer with a dedicated short-timeout client.
func NewRobotsEnforcer(userAgent string, logger *zap.Logger) *RobotsEnforcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsEnforcer{
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed reports whether the address may be fetched under the host's
// robots.txt rules.
func (e *RobotsEnforcer) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}
	data := e.robotsFor(ctx, u)
	if data == nil {
		return true
	}
	return data.FindGroup(e.userAgent).Test(u.Path)
}

func (e *RobotsEnforcer) robotsFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	if cached, ok := e.cache.Load(u.Host); ok {
		data, _ := cached.(*robotstxt.RobotsData)
		return data
	}
	data := e.fetch(ctx, u)
	actual, _ := e.cache.LoadOrStore(u.Host, data)
	stored, _ := actual.(*robotstxt.RobotsData)
	return stored
}

func (e *RobotsEnforcer) fetch(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("robots fetch failed", zap.String("host", u.Host), zap.Error(err))
		return nil
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.logger.Debug("close robots body", zap.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		e.logger.Debug("robots parse failed", zap.String("host", u.Host), zap.Error(err))
		return nil
	}
	return data
}
