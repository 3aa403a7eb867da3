package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Decision(OutcomeApproved)
	m.Decision(OutcomeApproved)
	m.Decision(OutcomeRejected)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues(OutcomeApproved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues(OutcomeRejected)))

	m.UploadStarted()
	m.UploadStarted()
	m.UploadFinished(UploadPlaceholder)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadsAlive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues(UploadPlaceholder)))

	m.ObserveRPC("/ledger.v1.ExpenseService/DecideExpense", "ok", 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/ledger.v1.ExpenseService/DecideExpense", "ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Decision(OutcomeApproved)
		m.UploadStarted()
		m.UploadFinished(UploadStored)
		m.ObserveRPC("p", "ok", time.Second)
	})
}
