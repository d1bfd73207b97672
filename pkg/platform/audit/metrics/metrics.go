package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit publisher.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	QueueDepth     prometheus.Gauge
	EventsDropped  prometheus.Counter
	EventsEnqueued prometheus.Counter

	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter
	EventsProcessed prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "deedgate_audit_queue_depth",
			Help: "Current number of events in the audit publisher queue",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to full buffer",
		}),
		EventsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_audit_events_enqueued_total",
			Help: "Total number of audit events successfully enqueued",
		}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deedgate_audit_persist_duration_seconds",
			Help:    "Time taken to persist an audit event to the store",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		EventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_audit_events_processed_total",
			Help: "Total number of audit events persisted",
		}),
	}
}

func (m *Metrics) IncEnqueued() {
	if m == nil {
		return
	}
	m.EventsEnqueued.Inc()
	m.QueueDepth.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

// DequeuedOne is called by the worker as it picks an event off the queue.
func (m *Metrics) DequeuedOne() {
	if m == nil {
		return
	}
	m.QueueDepth.Dec()
}

// ObservePersist records one Append against the store.
func (m *Metrics) ObservePersist(seconds float64, err error) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(seconds)
	if err != nil {
		m.PersistFailures.Inc()
		return
	}
	m.EventsProcessed.Inc()
}
