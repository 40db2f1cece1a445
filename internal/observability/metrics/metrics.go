package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReviewMetrics exposes counters/histograms for document review runs.
type ReviewMetrics struct {
	runsTotal     *prometheus.CounterVec
	gateTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

func NewReviewMetrics(reg prometheus.Registerer) *ReviewMetrics {
	m := &ReviewMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "complyward",
			Subsystem: "review",
			Name:      "runs_total",
			Help:      "Total review runs by route path and outcome",
		}, []string{"path", "outcome"}),
		gateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "complyward",
			Subsystem: "review",
			Name:      "human_gate_total",
			Help:      "Human gate lifecycle events",
		}, []string{"event"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "complyward",
			Subsystem: "review",
			Name:      "stage_duration_seconds",
			Help:      "Latency of individual pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.gateTotal, m.stageDuration)
	return m
}

func (m *ReviewMetrics) ObserveRun(path, outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(path, outcome).Inc()
}

func (m *ReviewMetrics) ObserveGate(event string) {
	if m == nil {
		return
	}
	m.gateTotal.WithLabelValues(event).Inc()
}

func (m *ReviewMetrics) ObserveStageDuration(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}
