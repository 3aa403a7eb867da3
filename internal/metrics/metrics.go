// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the server's collectors. A nil *Metrics records nothing.
type Metrics struct {
	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	decisions    *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	uploadsAlive prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clarity",
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clarity",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clarity",
			Name:      "expense_decisions_total",
			Help:      "Expense review outcomes.",
		}, []string{"outcome"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clarity",
			Name:      "receipt_uploads_total",
			Help:      "Receipt uploads, by result.",
		}, []string{"result"}),
		uploadsAlive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "clarity",
			Name:      "receipt_uploads_in_flight",
			Help:      "Receipt uploads not yet resolved.",
		}),
	}
}

// Decision outcomes.
const (
	OutcomeApproved       = "approved"
	OutcomeForcedApproved = "approved_override"
	OutcomeRejected       = "rejected"
	OutcomeOverrunWarning = "overrun_warning"
	OutcomeConflict       = "conflict"
)

// Upload results.
const (
	UploadStored      = "stored"
	UploadPlaceholder = "placeholder"
)

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// Decision counts a review outcome.
func (m *Metrics) Decision(outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
}

// UploadStarted marks a receipt upload as in flight.
func (m *Metrics) UploadStarted() {
	if m == nil {
		return
	}
	m.uploadsAlive.Inc()
}

// UploadFinished resolves an in-flight upload with result.
func (m *Metrics) UploadFinished(result string) {
	if m == nil {
		return
	}
	m.uploadsAlive.Dec()
	m.uploads.WithLabelValues(result).Inc()
}
