package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the verification pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	PipelineLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deedgate_verification_decisions_total",
			Help: "Listing verification decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
		PipelineLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deedgate_verification_duration_seconds",
			Help:    "End-to-end latency of listing verification",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
	}
}

// ObserveDecision records one finished pipeline. reason is empty for accepted submissions.
func (m *Metrics) ObserveDecision(outcome, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome, reason).Inc()
	m.PipelineLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
