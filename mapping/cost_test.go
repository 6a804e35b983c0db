package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

func resolveRoot(t *testing.T, ix *GraphIndex, target Concept, available AvailableSet) *ValueNode {
	t.Helper()
	root, err := NewResolver(ix).Resolve(context.Background(), target, available)
	require.NoError(t, err)
	return root
}

// Worked example: two equivalences A->Target (cost 3) and B->Target
// (cost 1), available {A,B}: the cost-1 route via B must win.
func TestBestRoute_SelectsCheapestCandidate(t *testing.T) {
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptA, Target: conceptZ, Cost: 3},
			{Source: conceptB, Target: conceptZ, Cost: 1},
		},
		nil,
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptB))

	route, err := BestRoute(root)
	require.NoError(t, err)
	assert.Equal(t, 1.0, route.TotalCost())

	step := route.StepFor(conceptZ)
	require.Equal(t, StepEquivalence, step.Kind)
	assert.Equal(t, conceptB, step.Equivalence.Source)
}

// Availability shortcut: if the target is directly available the
// zero-cost source route always wins, regardless of other candidates.
func TestBestRoute_AvailabilityShortcut(t *testing.T) {
	ix := mustIndex(t,
		[]EquivalenceRelation{{Source: conceptA, Target: conceptZ, Cost: 0}},
		nil,
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptZ))

	route, err := BestRoute(root)
	require.NoError(t, err)
	assert.Equal(t, 0.0, route.TotalCost())
	// Both candidates cost 0; the source step was discovered first.
	assert.Equal(t, StepSource, route.StepFor(conceptZ).Kind)
}

func TestBestRoute_RejectsUnresolvedRoot(t *testing.T) {
	_, err := BestRoute(nil)
	assert.ErrorIs(t, err, errors.ErrNoRouteFound)

	_, err = BestRoute(&ValueNode{Concept: conceptZ, State: NodeUnreachable})
	assert.ErrorIs(t, err, errors.ErrNoRouteFound)
}

func TestBestRoute_AggregatesNestedCosts(t *testing.T) {
	// Two ways to Z: direct transformation from A (cost 6), or A->B
	// equivalence (1) + transformation B->Z (2) = 3.
	ix := mustIndex(t,
		[]EquivalenceRelation{{Source: conceptA, Target: conceptB, Cost: 1}},
		[]TransformationDescriptor{
			{ID: "a2z", Inputs: []Concept{conceptA}, Outputs: []Concept{conceptZ}, Cost: 6},
			{ID: "b2z", Inputs: []Concept{conceptB}, Outputs: []Concept{conceptZ}, Cost: 2},
		},
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA))

	route, err := BestRoute(root)
	require.NoError(t, err)
	assert.Equal(t, 3.0, route.TotalCost())
	assert.Equal(t, "b2z", route.StepFor(conceptZ).DescriptorID())
}

// A concept reachable both directly and through one of its own
// dependents: the through-dependent candidate ties on cost but cannot
// share a route with that dependent's derivation, so selection must
// fall back to the direct candidate instead of fixing a cyclic
// assignment.
func TestBestRoute_BacktracksOverCyclicTie(t *testing.T) {
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptY, Target: conceptX, Cost: 0},
			{Source: conceptX, Target: conceptY, Cost: 0},
			{Source: conceptA, Target: conceptY, Cost: 5},
		},
		[]TransformationDescriptor{
			{ID: "x2z", Inputs: []Concept{conceptX}, Outputs: []Concept{conceptZ}, Cost: 10},
			{ID: "yx2z", Inputs: []Concept{conceptY, conceptX}, Outputs: []Concept{conceptZ}, Cost: 0},
		},
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA))

	best, err := BestRoute(root)
	require.NoError(t, err)
	assert.Equal(t, 10.0, best.TotalCost())
	assert.Equal(t, "yx2z", best.StepFor(conceptZ).DescriptorID())
	// Y ties between A->Y and X->Y; only A->Y can coexist with Y->X.
	assert.Equal(t, conceptA, best.StepFor(conceptY).Equivalence.Source)

	_, err = Materialize(best)
	require.NoError(t, err)

	it := RoutesByCost(root)
	require.Equal(t, 2, it.Len())
	for {
		route, ok := it.Next()
		if !ok {
			break
		}
		_, err := Materialize(route)
		assert.NoError(t, err)
	}
}

func TestRoutesByCost_MonotoneAndCompleteEnumeration(t *testing.T) {
	// Three alternative derivations of Z with costs 3, 4 and 6.
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptA, Target: conceptB, Cost: 1},
			{Source: conceptC, Target: conceptB, Cost: 2},
		},
		[]TransformationDescriptor{
			{ID: "a2z", Inputs: []Concept{conceptA}, Outputs: []Concept{conceptZ}, Cost: 6},
			{ID: "b2z", Inputs: []Concept{conceptB}, Outputs: []Concept{conceptZ}, Cost: 2},
		},
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptC))

	it := RoutesByCost(root)
	assert.Equal(t, 3, it.Len())

	var costs []float64
	for {
		route, ok := it.Next()
		if !ok {
			break
		}
		costs = append(costs, route.TotalCost())
	}
	assert.Equal(t, []float64{3, 4, 6}, costs)
}

func TestRoutesByCost_FirstEqualsBestRoute(t *testing.T) {
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptA, Target: conceptZ, Cost: 2},
			{Source: conceptB, Target: conceptZ, Cost: 2},
		},
		nil,
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptB))

	best, err := BestRoute(root)
	require.NoError(t, err)

	first, ok := RoutesByCost(root).Next()
	require.True(t, ok)

	assert.Equal(t, best.TotalCost(), first.TotalCost())
	// Same tie-break: the first-discovered candidate.
	assert.Same(t, best.StepFor(conceptZ), first.StepFor(conceptZ))
}

func TestRoutesByCost_Restartable(t *testing.T) {
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptA, Target: conceptZ, Cost: 1},
			{Source: conceptB, Target: conceptZ, Cost: 2},
		},
		nil,
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptB))

	first := RoutesByCost(root)
	r1, ok := first.Next()
	require.True(t, ok)

	// A fresh call re-enumerates from scratch; the drained iterator
	// shares no state with it.
	second := RoutesByCost(root)
	r2, ok := second.Next()
	require.True(t, ok)
	assert.Equal(t, r1.TotalCost(), r2.TotalCost())
}

func TestRoutesByCost_UnresolvedRootIsEmpty(t *testing.T) {
	it := RoutesByCost(nil)
	_, ok := it.Next()
	assert.False(t, ok)
	assert.Zero(t, it.Len())
}

// One route fixes one step per concept: a concept shared by two
// transformation inputs must use the same derivation in both positions.
func TestRoutesByCost_ConsistentSharedChoice(t *testing.T) {
	// X is derivable from A (cost 1) or B (cost 2); f(X, Y) -> Z where
	// Y is derived from X. Every enumerated route must pick a single
	// derivation of X.
	ix := mustIndex(t,
		[]EquivalenceRelation{
			{Source: conceptA, Target: conceptX, Cost: 1},
			{Source: conceptB, Target: conceptX, Cost: 2},
			{Source: conceptX, Target: conceptY, Cost: 1},
		},
		[]TransformationDescriptor{
			{ID: "xy2z", Inputs: []Concept{conceptX, conceptY}, Outputs: []Concept{conceptZ}, Cost: 1},
		},
	)
	root := resolveRoot(t, ix, conceptZ, NewAvailableSet(conceptA, conceptB))

	it := RoutesByCost(root)
	// Two choices for X: via A or via B. No mixed assignments.
	assert.Equal(t, 2, it.Len())

	prev := -1.0
	for {
		route, ok := it.Next()
		if !ok {
			break
		}
		assert.GreaterOrEqual(t, route.TotalCost(), prev)
		prev = route.TotalCost()

		stepX := route.StepFor(conceptX)
		require.NotNil(t, stepX)
		// Y's derivation goes through the same X node assignment.
		stepY := route.StepFor(conceptY)
		require.NotNil(t, stepY)
		assert.Equal(t, conceptX, stepY.Equivalence.Source)
	}
}
