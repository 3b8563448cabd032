package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func validEvent(stage Stage) Event {
	return Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
		URL:   "https://example.com",
	}
}

func TestHubDeliversOnClose(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(validEvent(StageRunStart))
	hub.Emit(validEvent(StagePageDone))
	require.NoError(t, hub.Close(context.Background()))

	events := sink.snapshot()
	require.Len(t, events, 2)
	require.Equal(t, StageRunStart, events[0].Stage)
	require.Equal(t, StagePageDone, events[1].Stage)
	require.True(t, sink.closed)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{}) // missing everything
	hub.Emit(Event{RunID: UUIDToBytes(uuid.New()), TS: time.Now(), Stage: StagePageDone}) // missing URL
	require.NoError(t, hub.Close(context.Background()))
	require.Empty(t, sink.snapshot())
}

func TestHubEmitAfterCloseIsNoop(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))
	hub.Emit(validEvent(StageRunStart))
	require.Empty(t, sink.snapshot())
}

func TestHubPeriodicFlush(t *testing.T) {
	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 20 * time.Millisecond}, sink)
	defer func() { _ = hub.Close(context.Background()) }()

	hub.Emit(validEvent(StagePageStart))
	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEventValidate(t *testing.T) {
	base := validEvent(StagePageDone)

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, base.Validate())
	})
	t.Run("missing run id", func(t *testing.T) {
		evt := base
		evt.RunID = [16]byte{}
		require.Error(t, evt.Validate())
	})
	t.Run("unknown stage", func(t *testing.T) {
		evt := base
		evt.Stage = "NOPE"
		require.Error(t, evt.Validate())
	})
	t.Run("run stage needs no url", func(t *testing.T) {
		evt := base
		evt.Stage = StageRunDone
		evt.URL = ""
		require.NoError(t, evt.Validate())
	})
	t.Run("negative duration", func(t *testing.T) {
		evt := base
		evt.Dur = -time.Second
		require.Error(t, evt.Validate())
	})
}
