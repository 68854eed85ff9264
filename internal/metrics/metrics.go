// Package metrics exposes Prometheus instrumentation for the capture
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeCreated      = "created"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"

	OutcomeDispatched = "dispatched"
	OutcomeFailed     = "failed"
	OutcomeDropped    = "dropped"
	OutcomeSkipped    = "skipped"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	CapturesTotal   *prometheus.CounterVec
	DispatchesTotal *prometheus.CounterVec
	SweptTotal      prometheus.Counter
	QueueDepth      prometheus.Gauge
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CapturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linklens",
			Name:      "captures_total",
			Help:      "Capture requests handled, by outcome.",
		}, []string{"outcome"}),
		DispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linklens",
			Name:      "summarizer_dispatches_total",
			Help:      "Summarizer dispatch jobs, by outcome.",
		}, []string{"outcome"}),
		SweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linklens",
			Name:      "stale_links_swept_total",
			Help:      "Stale non-terminal links marked failed by the sweeper.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linklens",
			Name:      "dispatch_queue_depth",
			Help:      "Jobs currently waiting in the dispatch queue.",
		}),
	}

	reg.MustRegister(m.CapturesTotal, m.DispatchesTotal, m.SweptTotal, m.QueueDepth)
	return m
}

// NewNop creates unregistered collectors for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
