package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records ledger RPC latency, cache effectiveness and breaker state.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RPCDuration   *prometheus.HistogramVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	BreakerOpen   prometheus.Gauge
	BreakerReject prometheus.Counter
}

// NewMetrics registers the ledger collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deedgate_ledger_rpc_duration_seconds",
			Help:    "Latency of ledger contract calls by method and result",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
		}, []string{"method", "result"}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_ledger_cache_hits_total",
			Help: "isRegistered answers served from the cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_ledger_cache_misses_total",
			Help: "isRegistered lookups that went to the ledger",
		}),
		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "deedgate_ledger_breaker_open",
			Help: "1 while the ledger circuit breaker is open",
		}),
		BreakerReject: f.NewCounter(prometheus.CounterOpts{
			Name: "deedgate_ledger_breaker_rejected_total",
			Help: "Ledger calls failed fast by the open circuit",
		}),
	}
}

func (m *Metrics) ObserveRPC(method string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RPCDuration.WithLabelValues(method, result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) IncBreakerReject() {
	if m != nil {
		m.BreakerReject.Inc()
	}
}
