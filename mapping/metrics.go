package mapping

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the resolution engine. A nil
// *Metrics disables recording, so instrumentation stays optional.
type Metrics struct {
	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	nodesVisited       prometheus.Histogram
	routesEnumerated   prometheus.Counter
	planSteps          prometheus.Histogram
}

// NewMetrics creates resolver metrics and registers them with the given
// registerer. Pass prometheus.DefaultRegisterer for the process-wide
// registry, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mapping",
				Subsystem: "resolver",
				Name:      "resolutions_total",
				Help:      "Total number of resolution calls by outcome",
			},
			[]string{"outcome"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mapping",
				Subsystem: "resolver",
				Name:      "resolution_duration_seconds",
				Help:      "Resolution call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		nodesVisited: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mapping",
				Subsystem: "resolver",
				Name:      "nodes_visited",
				Help:      "Concept nodes visited per resolution",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		routesEnumerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mapping",
				Subsystem: "cost",
				Name:      "routes_enumerated_total",
				Help:      "Total number of candidate routes enumerated",
			},
		),
		planSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mapping",
				Subsystem: "plan",
				Name:      "steps",
				Help:      "Steps per materialized execution plan",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.resolutionsTotal,
			m.resolutionDuration,
			m.nodesVisited,
			m.routesEnumerated,
			m.planSteps,
		)
	}
	return m
}

// RecordResolution records the outcome of one Resolve call.
func (m *Metrics) RecordResolution(outcome string, duration time.Duration, visited int) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
	m.resolutionDuration.Observe(duration.Seconds())
	m.nodesVisited.Observe(float64(visited))
}

// RecordRoutes records the size of one route enumeration.
func (m *Metrics) RecordRoutes(count int) {
	if m == nil {
		return
	}
	m.routesEnumerated.Add(float64(count))
}

// RecordPlan records the size of one materialized plan.
func (m *Metrics) RecordPlan(steps int) {
	if m == nil {
		return
	}
	m.planSteps.Observe(float64(steps))
}
