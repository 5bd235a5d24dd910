package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan module.
type Metrics struct {
	Decisions      *prometheus.CounterVec
	ConfirmLatency prometheus.Histogram
}

// New creates a new Metrics instance with all scan module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_scan_decisions_total",
			Help: "Confirm outcomes by result",
		}, []string{"result"}), // result: "approved", "denied", "already_decided", "rejected"
		ConfirmLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_scan_confirm_duration_seconds",
			Help:    "Confirm call latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementDecision records one confirm outcome.
func (m *Metrics) IncrementDecision(result string) {
	if m != nil {
		m.Decisions.WithLabelValues(result).Inc()
	}
}

// ObserveConfirm records one confirm call duration.
func (m *Metrics) ObserveConfirm(d time.Duration) {
	if m != nil {
		m.ConfirmLatency.Observe(d.Seconds())
	}
}
