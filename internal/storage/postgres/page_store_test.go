package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/sitescribe/sitescribe/internal/scrape"
)

func TestPageStoreInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPageStoreWithPool(mock, "pages")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	rec := scrape.PageRecord{
		RunID:          "run-1",
		URL:            "https://example.com/about",
		NormalizedURL:  "https://example.com/about",
		Title:          "About",
		Depth:          1,
		MarkdownPath:   "output/markdown/about.md",
		ScreenshotPath: "output/about.png",
		ContentHash:    "abc123",
		ScrapedAt:      now,
	}

	mock.ExpectExec("INSERT INTO pages").
		WithArgs(
			rec.RunID,
			rec.URL,
			rec.NormalizedURL,
			rec.Title,
			rec.Depth,
			rec.MarkdownPath,
			rec.ScreenshotPath,
			rec.ContentHash,
			rec.ScrapedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.RecordPage(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPageStoreRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPageStoreWithPool(mock, "pages; DROP TABLE pages")
	require.Error(t, err)
}

func TestPageStoreRequiresRunID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPageStoreWithPool(mock, "")
	require.NoError(t, err)

	err = store.RecordPage(context.Background(), scrape.PageRecord{})
	require.Error(t, err)
}
