// Package postgres provides Postgres-backed persistence for page records.
package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitescribe/sitescribe/internal/scrape"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// PageStore writes one row per scraped page into Postgres.
type PageStore struct {
	pool  execCloser
	table string
}

// NewPageStore connects a pool from the DSN and validates the table name.
func NewPageStore(ctx context.Context, dsn, table string) (*PageStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if table == "" {
		table = "pages"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PageStore{pool: pool, table: table}, nil
}

// NewPageStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewPageStoreWithPool(pool execCloser, table string) (*PageStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "pages"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PageStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *PageStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RecordPage inserts a page row.
func (s *PageStore) RecordPage(ctx context.Context, rec scrape.PageRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("page store is not configured")
	}
	if rec.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	url,
	normalized_url,
	title,
	depth,
	markdown_path,
	screenshot_path,
	content_hash,
	scraped_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)`, s.table)

	args := []any{
		rec.RunID,
		rec.URL,
		rec.NormalizedURL,
		rec.Title,
		rec.Depth,
		rec.MarkdownPath,
		rec.ScreenshotPath,
		rec.ContentHash,
		rec.ScrapedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}
