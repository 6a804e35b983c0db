package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordResolution("resolved", 5*time.Millisecond, 12)
	m.RecordResolution("no_route", time.Millisecond, 3)
	m.RecordRoutes(4)
	m.RecordPlan(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["mapping_resolver_resolutions_total"])
	assert.True(t, names["mapping_resolver_resolution_duration_seconds"])
	assert.True(t, names["mapping_cost_routes_enumerated_total"])
	assert.True(t, names["mapping_plan_steps"])
}

// The resolver-level helpers feed the route and plan series, so a
// resolve -> enumerate -> materialize pass populates all five series.
func TestMetricsRecordedThroughResolver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ix, err := BuildIndex(
		[]EquivalenceRelation{{Source: conceptA, Target: conceptB, Cost: 1}},
		nil,
	)
	require.NoError(t, err)
	r := NewResolver(ix, WithMetrics(m))

	root, err := r.Resolve(context.Background(), conceptB, NewAvailableSet(conceptA, conceptB))
	require.NoError(t, err)

	it := r.RoutesByCost(root)
	require.Equal(t, 2, it.Len())
	route, ok := it.Next()
	require.True(t, ok)
	plan, err := r.Materialize(route)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Steps)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				values[mf.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.Equal(t, 1.0, values["mapping_resolver_resolutions_total"])
	assert.Equal(t, 2.0, values["mapping_cost_routes_enumerated_total"])
	assert.Equal(t, 1.0, values["mapping_plan_steps"])
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	// Recording on a nil Metrics must be a no-op, not a panic.
	m.RecordResolution("resolved", time.Millisecond, 1)
	m.RecordRoutes(1)
	m.RecordPlan(1)
}
