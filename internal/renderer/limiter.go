package renderer

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// domainLimiter throttles navigation per host. A qps of zero disables
// throttling entirely.
type domainLimiter struct {
	mu       sync.Mutex
	qps      float64
	limiters map[string]*rate.Limiter
}

func newDomainLimiter(qps float64) *domainLimiter {
	return &domainLimiter{
		qps:      qps,
		limiters: make(map[string]*rate.Limiter),
	}
}

// wait blocks until the host's limiter grants a slot or the context ends.
func (d *domainLimiter) wait(ctx context.Context, rawURL string) error {
	if d == nil || d.qps <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	d.mu.Lock()
	limiter, ok := d.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.qps), 1)
		d.limiters[u.Host] = limiter
	}
	d.mu.Unlock()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", u.Host, err)
	}
	return nil
}
