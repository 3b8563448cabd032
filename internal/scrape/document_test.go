package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitescribe/sitescribe/internal/extract"
)

func TestComposeDocument_KeyOrderAndBody(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	meta := extract.Meta{Title: "About Us", Description: "Who we are"}
	got := ComposeDocument(meta, "https://x.com/about#team", "https://x.com/about", at, 1, "# About Us\n\nHello\n\n")

	want := `---
title: "About Us"
url: "https://x.com/about#team"
normalizedUrl: "https://x.com/about"
description: "Who we are"
date: 2026-08-24T12:00:00Z
depth: 1
---

# About Us

Hello

`
	require.Equal(t, want, got)
}

func TestComposeDocument_EscapesQuotes(t *testing.T) {
	t.Parallel()

	meta := extract.Meta{Title: `Say "hi"`, Description: `back\slash`}
	got := ComposeDocument(meta, "https://x.com", "https://x.com", time.Unix(0, 0).UTC(), 0, "")

	require.Contains(t, got, `title: "Say \"hi\""`)
	require.Contains(t, got, `description: "back\\slash"`)
}

func TestComposeDocument_EmptyFieldsStayQuoted(t *testing.T) {
	t.Parallel()

	got := ComposeDocument(extract.Meta{}, "https://x.com", "https://x.com", time.Unix(0, 0).UTC(), 0, "body\n")
	require.Contains(t, got, `title: ""`)
	require.Contains(t, got, `description: ""`)
	require.Contains(t, got, "---\n\nbody\n")
}
