package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	markdownDir  = "markdown"
	imagesDir    = "images"
	indexFile    = "index.md"
	metadataFile = "metadata.json"
)

// FSSink writes the run's artifact bundle to the local filesystem:
//
//	<root>/markdown/<page>.md
//	<root>/markdown/images/
//	<root>/markdown/index.md
//	<root>/<page>.png
//	<root>/metadata.json
type FSSink struct {
	root string
}

// NewFSSink creates the output directory tree, failing fast if the root is
// unusable.
func NewFSSink(root string) (*FSSink, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	for _, dir := range []string{
		root,
		filepath.Join(root, markdownDir),
		filepath.Join(root, markdownDir, imagesDir),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	return &FSSink{root: root}, nil
}

// Root returns the bundle's base directory.
func (s *FSSink) Root() string {
	return s.root
}

// WriteDocument stores a Markdown document under markdown/ and returns the
// written path.
func (s *FSSink) WriteDocument(_ context.Context, name string, data []byte) (string, error) {
	path, err := s.safePath(markdownDir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write document %s: %w", name, err)
	}
	return path, nil
}

// WriteScreenshot stores a screenshot at the bundle root and returns the
// written path.
func (s *FSSink) WriteScreenshot(_ context.Context, name string, data []byte) (string, error) {
	path, err := s.safePath("", name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", name, err)
	}
	return path, nil
}

// WriteIndex stores the crawl index alongside the page documents.
func (s *FSSink) WriteIndex(_ context.Context, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.root, markdownDir, indexFile), data, 0o600); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// WriteRunMetadata stores the run metadata at the bundle root.
func (s *FSSink) WriteRunMetadata(_ context.Context, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.root, metadataFile), data, 0o600); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}

// safePath joins the name under root/subdir and rejects traversal outside
// the bundle.
func (s *FSSink) safePath(subdir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("artifact name is required")
	}
	full := filepath.Join(s.root, subdir, name)
	cleanRoot := filepath.Clean(s.root)
	if !strings.HasPrefix(filepath.Clean(full), cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact name escapes output directory: %s", name)
	}
	return full, nil
}
