package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/sitescribe/sitescribe/internal/progress"
)

// Status is a point-in-time snapshot of the current run, served by the
// status HTTP endpoint.
type Status struct {
	RunID      string    `json:"runId"`
	State      string    `json:"state"`
	PagesDone  int       `json:"pagesDone"`
	PageErrors int       `json:"pageErrors"`
	LastURL    string    `json:"lastUrl,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// StatusSink folds the event stream into an in-memory Status. It backs the
// read-only /status endpoint and is safe for concurrent reads and writes.
type StatusSink struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusSink creates an empty StatusSink.
func NewStatusSink() *StatusSink {
	return &StatusSink{status: Status{State: "idle"}}
}

// Consume folds the batch into the snapshot.
func (s *StatusSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		s.apply(evt)
	}
	return nil
}

func (s *StatusSink) apply(evt progress.Event) {
	s.status.RunID = evt.RunUUID().String()
	s.status.UpdatedAt = evt.TS
	switch evt.Stage {
	case progress.StageRunStart:
		s.status = Status{
			RunID:     evt.RunUUID().String(),
			State:     "running",
			StartedAt: evt.TS,
			UpdatedAt: evt.TS,
		}
	case progress.StageRunDone:
		s.status.State = "done"
	case progress.StageRunError:
		s.status.State = "failed"
		s.status.Note = evt.Note
	case progress.StagePageStart:
		s.status.LastURL = evt.URL
	case progress.StagePageDone:
		s.status.PagesDone++
		s.status.LastURL = evt.URL
	case progress.StagePageError:
		s.status.PageErrors++
		s.status.LastURL = evt.URL
	}
}

// Snapshot returns a copy of the current status.
func (s *StatusSink) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Close implements the Sink interface; it performs no action.
func (s *StatusSink) Close(context.Context) error {
	return nil
}
