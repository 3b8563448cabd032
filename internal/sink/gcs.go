package sink

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/scrape"
)

// GCSMirror decorates an ArtifactSink, uploading a copy of every artifact to
// a Google Cloud Storage bucket after the local write succeeds. Upload
// failures are logged and do not fail the run.
type GCSMirror struct {
	inner  scrape.ArtifactSink
	client *storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewGCSMirror initializes the GCS client via Application Default Credentials
// and verifies bucket access so misconfiguration fails at startup.
func NewGCSMirror(
	ctx context.Context,
	inner scrape.ArtifactSink,
	bucket, prefix string,
	logger *zap.Logger,
) (*GCSMirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close GCS client after attrs failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}
	return &GCSMirror{
		inner:  inner,
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Close releases the GCS client.
func (m *GCSMirror) Close() error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("close GCS client: %w", err)
	}
	return nil
}

// WriteDocument writes locally then mirrors to markdown/<name>.
func (m *GCSMirror) WriteDocument(ctx context.Context, name string, data []byte) (string, error) {
	written, err := m.inner.WriteDocument(ctx, name, data)
	if err != nil {
		return "", err
	}
	m.upload(ctx, path.Join("markdown", name), data)
	return written, nil
}

// WriteScreenshot writes locally then mirrors to the bundle root.
func (m *GCSMirror) WriteScreenshot(ctx context.Context, name string, data []byte) (string, error) {
	written, err := m.inner.WriteScreenshot(ctx, name, data)
	if err != nil {
		return "", err
	}
	m.upload(ctx, name, data)
	return written, nil
}

// WriteIndex writes locally then mirrors markdown/index.md.
func (m *GCSMirror) WriteIndex(ctx context.Context, data []byte) error {
	if err := m.inner.WriteIndex(ctx, data); err != nil {
		return err
	}
	m.upload(ctx, path.Join("markdown", "index.md"), data)
	return nil
}

// WriteRunMetadata writes locally then mirrors metadata.json.
func (m *GCSMirror) WriteRunMetadata(ctx context.Context, data []byte) error {
	if err := m.inner.WriteRunMetadata(ctx, data); err != nil {
		return err
	}
	m.upload(ctx, "metadata.json", data)
	return nil
}

func (m *GCSMirror) upload(ctx context.Context, objectName string, data []byte) {
	if m.prefix != "" {
		objectName = path.Join(m.prefix, objectName)
	}
	wc := m.client.Bucket(m.bucket).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			m.logger.Warn("close GCS writer after write failure", zap.Error(closeErr))
		}
		m.logger.Warn("mirror upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return
	}
	if err := wc.Close(); err != nil {
		m.logger.Warn("finalize mirror upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
	}
}
