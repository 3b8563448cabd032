package scrape

import (
	"context"
	"errors"
	"time"
)

// ErrScreenshotUnsupported is returned by engines that cannot capture
// screenshots (the plain HTTP engine). The pipeline treats it as a best-effort
// miss, not a page failure.
var ErrScreenshotUnsupported = errors.New("screenshot not supported by this engine")

// RenderEngine is the shared rendering resource spanning a whole run. It must
// be closed exactly once at run end regardless of success or failure.
type RenderEngine interface {
	// NewSession opens a rendering context scoped to a single page.
	NewSession(ctx context.Context) (PageSession, error)
	Close(ctx context.Context) error
}

// PageSession is a single logical page session within the engine. Callers
// must Close it after use, success or failure.
type PageSession interface {
	// Navigate loads the address and waits for the page to settle, bounded
	// by the context deadline.
	Navigate(ctx context.Context, rawURL string) error
	// Location reports the resolved address after navigation.
	Location() string
	// HTML returns a serialized snapshot of the rendered document tree.
	HTML(ctx context.Context) (string, error)
	// Screenshot captures a full-page image, or ErrScreenshotUnsupported.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// ArtifactSink persists the run's output bundle. Implementations own the
// directory layout; callers pass bare file names.
type ArtifactSink interface {
	WriteDocument(ctx context.Context, name string, data []byte) (string, error)
	WriteScreenshot(ctx context.Context, name string, data []byte) (string, error)
	WriteIndex(ctx context.Context, data []byte) error
	WriteRunMetadata(ctx context.Context, data []byte) error
}

// PageRecorder persists one record per successfully scraped page.
type PageRecorder interface {
	RecordPage(ctx context.Context, rec PageRecord) error
}

// Publisher pushes the run-completion event to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// RobotsPolicy decides whether a discovered link may be enqueued.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Hasher computes digests for page-record integrity.
type Hasher interface {
	Hash(data []byte) string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
