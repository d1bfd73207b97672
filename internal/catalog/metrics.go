package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records chain status lookups. A nil *Metrics records nothing.
type Metrics struct {
	LookupLatency *prometheus.HistogramVec
	LookupErrors  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LookupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deedgate_catalog_lookup_duration_seconds",
			Help:    "Latency of ledger lookups made while annotating listings",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3},
		}, []string{"lookup"}),
		LookupErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deedgate_catalog_lookup_errors_total",
			Help: "Ledger lookups that failed or timed out while annotating listings",
		}, []string{"lookup"}),
	}
}

func (m *Metrics) ObserveLookup(lookup string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.LookupLatency.WithLabelValues(lookup).Observe(time.Since(start).Seconds())
	if err != nil {
		m.LookupErrors.WithLabelValues(lookup).Inc()
	}
}
