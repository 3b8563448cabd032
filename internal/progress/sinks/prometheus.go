package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sitescribe/sitescribe/internal/progress"
)

// PrometheusSink exports crawl progress metrics. It owns all collectors for
// run lifecycle and per-page completion counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	pagesTotal    *prometheus.CounterVec
	pageDuration  prometheus.Histogram
	markdownBytes prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitescribe_runs_started_total",
			Help: "Total crawl runs started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitescribe_runs_completed_total",
			Help: "Total crawl runs completed partitioned by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitescribe_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"result"}),
		pagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitescribe_pages_total",
			Help: "Page completions partitioned by result.",
		}, []string{"result"}),
		pageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitescribe_page_duration_seconds",
			Help:    "Render-to-persist duration per page.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		markdownBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitescribe_markdown_bytes_total",
			Help: "Total bytes of Markdown produced.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runDuration,
		s.pagesTotal,
		s.pageDuration,
		s.markdownBytes,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. It is safe for
// concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsCompleted.WithLabelValues("success").Inc()
		s.observeRun(evt, "success")
	case progress.StageRunError:
		s.runsCompleted.WithLabelValues("error").Inc()
		s.observeRun(evt, "error")
	case progress.StagePageDone:
		s.pagesTotal.WithLabelValues("success").Inc()
		if evt.Dur > 0 {
			s.pageDuration.Observe(evt.Dur.Seconds())
		}
		if evt.Bytes > 0 {
			s.markdownBytes.Add(float64(evt.Bytes))
		}
	case progress.StagePageError:
		s.pagesTotal.WithLabelValues("error").Inc()
	}
}

func (s *PrometheusSink) observeRun(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
