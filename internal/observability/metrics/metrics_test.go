package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReviewMetricsNilSafe(t *testing.T) {
	var m *ReviewMetrics
	assert.NotPanics(t, func() {
		m.ObserveRun("fast", "finalized")
		m.ObserveGate("opened")
		m.ObserveStageDuration("risk_triage", 0.01)
	})
}

func TestReviewMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReviewMetrics(reg)

	m.ObserveRun("fast", "finalized")
	m.ObserveRun("fast", "finalized")
	m.ObserveRun("human_gate", "gated")
	m.ObserveGate("opened")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.runsTotal.WithLabelValues("fast", "finalized")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues("human_gate", "gated")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.gateTotal.WithLabelValues("opened")))
}
