package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pass module.
type Metrics struct {
	Issued            prometheus.Counter
	Renewed           prometheus.Counter
	ValidationResults *prometheus.CounterVec
}

// New creates a new Metrics instance with all pass module metrics registered.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_passes_issued_total",
			Help: "Total visitor passes issued",
		}),
		Renewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_passes_renewed_total",
			Help: "Total visitor pass renewals",
		}),
		ValidationResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_pass_validations_total",
			Help: "Pass validation results by outcome",
		}, []string{"result"}), // result: "valid", "not_found", "expired"
	}
}

// IncrementIssued records one issued pass.
func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.Issued.Inc()
	}
}

// IncrementRenewed records one renewal.
func (m *Metrics) IncrementRenewed() {
	if m != nil {
		m.Renewed.Inc()
	}
}

// IncrementValidation records a validation outcome.
func (m *Metrics) IncrementValidation(result string) {
	if m != nil {
		m.ValidationResults.WithLabelValues(result).Inc()
	}
}
