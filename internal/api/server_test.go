package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/progress"
	"github.com/sitescribe/sitescribe/internal/progress/sinks"
)

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	server := NewServer(sinks.NewStatusSink(), prometheus.NewRegistry(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Status_ReflectsSink(t *testing.T) {
	t.Parallel()

	sink := sinks.NewStatusSink()
	runID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{RunID: progress.UUIDToBytes(runID), TS: now, Stage: progress.StageRunStart},
		{RunID: progress.UUIDToBytes(runID), TS: now, Stage: progress.StagePageDone, URL: "https://example.com"},
	}))

	server := NewServer(sink, prometheus.NewRegistry(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got sinks.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "running", got.State)
	require.Equal(t, 1, got.PagesDone)
	require.Equal(t, runID.String(), got.RunID)
}

func TestServer_Status_NilSource(t *testing.T) {
	t.Parallel()

	server := NewServer(nil, prometheus.NewRegistry(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "idle")
}

func TestServer_Metrics_ServesRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := sinks.NewPrometheusSink(reg)
	require.NoError(t, err)
	runID := progress.UUIDToBytes(uuid.New())
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: time.Now().UTC(), Stage: progress.StageRunStart},
	}))

	server := NewServer(sinks.NewStatusSink(), reg, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sitescribe_runs_started_total 1")
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	server := NewServer(sinks.NewStatusSink(), prometheus.NewRegistry(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
