package registration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "deedgate/pkg/domain-errors"
)

const (
	resultRegistered = "registered"
	resultForbidden  = "forbidden"
	resultConflict   = "conflict"
	resultError      = "error"
)

// Metrics counts registrations by result. A nil *Metrics records nothing.
type Metrics struct {
	Registrations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Registrations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "deedgate_registrations_total",
			Help: "Deed registrations by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncResult(result string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultRegistered
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return resultConflict
	default:
		return resultError
	}
}
