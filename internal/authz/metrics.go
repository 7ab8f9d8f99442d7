package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains authorization metrics.
type Metrics struct {
	// evaluationTotal counts total authorization evaluations.
	evaluationTotal *prometheus.CounterVec

	// evaluationDuration measures authorization evaluation duration.
	evaluationDuration prometheus.Histogram

	// decisionTotal counts authorization decisions per policy.
	decisionTotal *prometheus.CounterVec

	// policyCount tracks the number of installed policies.
	policyCount prometheus.Gauge
}

// NewMetrics creates new authorization metrics registered with the
// default registerer, so they appear on the default /metrics endpoint.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom
// registerer. Duplicate registrations are ignored.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "avauthz"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{}

	m.evaluationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "evaluation_total",
			Help:      "Total number of authorization evaluations",
		},
		[]string{"result"},
	)

	m.evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "evaluation_duration_seconds",
			Help:      "Authorization evaluation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	m.decisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decision_total",
			Help:      "Total number of authorization decisions",
		},
		[]string{"decision", "policy"},
	)

	m.policyCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "policy_count",
			Help:      "Number of installed authorization policies",
		},
	)

	collectors := []prometheus.Collector{
		m.evaluationTotal,
		m.evaluationDuration,
		m.decisionTotal,
		m.policyCount,
	}
	for _, c := range collectors {
		_ = registerer.Register(c)
	}

	return m
}

// RecordEvaluation records an authorization evaluation.
func (m *Metrics) RecordEvaluation(result string, duration time.Duration) {
	if m == nil || m.evaluationTotal == nil {
		return
	}
	m.evaluationTotal.WithLabelValues(result).Inc()
	m.evaluationDuration.Observe(duration.Seconds())
}

// RecordDecision records an authorization decision.
func (m *Metrics) RecordDecision(decision, policy string) {
	if m == nil || m.decisionTotal == nil {
		return
	}
	m.decisionTotal.WithLabelValues(decision, policy).Inc()
}

// SetPolicyCount sets the installed policy count.
func (m *Metrics) SetPolicyCount(count int) {
	if m == nil || m.policyCount == nil {
		return
	}
	m.policyCount.Set(float64(count))
}
