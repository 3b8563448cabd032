package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/progress"
)

// LogSink emits structured logs for the progress stream. It is the default
// sink so a run is observable with nothing but a terminal.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.logger.Info("progress event",
			zap.String("run_id", evt.RunUUID().String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("url", evt.URL),
			zap.Int("depth", evt.Depth),
			zap.Int64("bytes", evt.Bytes),
			zap.Duration("dur", evt.Dur),
			zap.String("note", evt.Note),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
