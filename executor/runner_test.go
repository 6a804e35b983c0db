package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
)

const (
	conceptA = mapping.Concept("http://onto.example/A")
	conceptB = mapping.Concept("http://onto.example/B")
	conceptC = mapping.Concept("http://onto.example/C")
	conceptX = mapping.Concept("http://onto.example/X")
	conceptY = mapping.Concept("http://onto.example/Y")
	conceptZ = mapping.Concept("http://onto.example/Z")
)

func resolvePlan(t *testing.T, equivalences []mapping.EquivalenceRelation, transformations []mapping.TransformationDescriptor, target mapping.Concept, available mapping.AvailableSet) *mapping.ExecutionPlan {
	t.Helper()
	ix, err := mapping.BuildIndex(equivalences, transformations)
	require.NoError(t, err)
	root, err := mapping.NewResolver(ix).Resolve(context.Background(), target, available)
	require.NoError(t, err)
	route, err := mapping.BestRoute(root)
	require.NoError(t, err)
	plan, err := mapping.Materialize(route)
	require.NoError(t, err)
	return plan
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("f", func(context.Context, []any) ([]any, error) { return nil, nil }))
	require.Error(t, reg.Register("", func(context.Context, []any) ([]any, error) { return nil, nil }))
	require.Error(t, reg.Register("g", nil))

	_, ok := reg.Lookup("f")
	assert.True(t, ok)
	_, ok = reg.Lookup("g")
	assert.False(t, ok)
	assert.Equal(t, []string{"f"}, reg.IDs())
}

func TestRunnerExecutesPlan(t *testing.T) {
	plan := resolvePlan(t,
		[]mapping.EquivalenceRelation{{Source: conceptA, Target: conceptB, Cost: 1}},
		[]mapping.TransformationDescriptor{
			{ID: "b2c", Inputs: []mapping.Concept{conceptB}, Outputs: []mapping.Concept{conceptC}, Cost: 2},
		},
		conceptC, mapping.NewAvailableSet(conceptA))

	reg := NewRegistry()
	require.NoError(t, reg.Register("b2c", func(_ context.Context, args []any) ([]any, error) {
		return []any{args[0].(float64) + 273.15}, nil
	}))

	bound, err := NewRunner(reg).Run(context.Background(), plan, map[mapping.Concept]any{conceptA: 20.0})
	require.NoError(t, err)
	assert.Equal(t, 293.15, bound[conceptC])
	// The rebind aliased A's value under B before invocation.
	assert.Equal(t, 20.0, bound[conceptB])
}

func TestRunnerArgumentOrder(t *testing.T) {
	plan := resolvePlan(t, nil,
		[]mapping.TransformationDescriptor{
			{ID: "sub", Inputs: []mapping.Concept{conceptX, conceptY}, Outputs: []mapping.Concept{conceptZ}, Cost: 1},
		},
		conceptZ, mapping.NewAvailableSet(conceptX, conceptY))

	reg := NewRegistry()
	require.NoError(t, reg.Register("sub", func(_ context.Context, args []any) ([]any, error) {
		// Argument order must follow descriptor input order: X then Y.
		return []any{args[0].(int) - args[1].(int)}, nil
	}))

	bound, err := NewRunner(reg).Run(context.Background(), plan,
		map[mapping.Concept]any{conceptX: 10, conceptY: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, bound[conceptZ])
}

func TestRunnerMultiOutputBinding(t *testing.T) {
	plan := resolvePlan(t, nil,
		[]mapping.TransformationDescriptor{
			{ID: "split", Inputs: []mapping.Concept{conceptA}, Outputs: []mapping.Concept{conceptX, conceptY}, Cost: 1},
			{ID: "combine", Inputs: []mapping.Concept{conceptX, conceptY}, Outputs: []mapping.Concept{conceptZ}, Cost: 1},
		},
		conceptZ, mapping.NewAvailableSet(conceptA))

	reg := NewRegistry()
	require.NoError(t, reg.Register("split", func(_ context.Context, args []any) ([]any, error) {
		s := args[0].(string)
		return []any{s + ".x", s + ".y"}, nil
	}))
	require.NoError(t, reg.Register("combine", func(_ context.Context, args []any) ([]any, error) {
		return []any{fmt.Sprintf("%v+%v", args[0], args[1])}, nil
	}))

	bound, err := NewRunner(reg).Run(context.Background(), plan, map[mapping.Concept]any{conceptA: "a"})
	require.NoError(t, err)
	assert.Equal(t, "a.x", bound[conceptX])
	assert.Equal(t, "a.y", bound[conceptY])
	assert.Equal(t, "a.x+a.y", bound[conceptZ])
}

func TestRunnerMissingCallable(t *testing.T) {
	plan := resolvePlan(t, nil,
		[]mapping.TransformationDescriptor{
			{ID: "f", Inputs: []mapping.Concept{conceptA}, Outputs: []mapping.Concept{conceptB}, Cost: 1},
		},
		conceptB, mapping.NewAvailableSet(conceptA))

	_, err := NewRunner(NewRegistry()).Run(context.Background(), plan, map[mapping.Concept]any{conceptA: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCallableNotFound)
	assert.True(t, errors.IsInvalid(err))
}

func TestRunnerArityMismatch(t *testing.T) {
	plan := resolvePlan(t, nil,
		[]mapping.TransformationDescriptor{
			{ID: "f", Inputs: []mapping.Concept{conceptA}, Outputs: []mapping.Concept{conceptB}, Cost: 1},
		},
		conceptB, mapping.NewAvailableSet(conceptA))

	reg := NewRegistry()
	require.NoError(t, reg.Register("f", func(context.Context, []any) ([]any, error) {
		return []any{1, 2}, nil // descriptor declares one output
	}))

	_, err := NewRunner(reg).Run(context.Background(), plan, map[mapping.Concept]any{conceptA: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrArityMismatch)
}

func TestRunnerMissingAvailableValue(t *testing.T) {
	plan := resolvePlan(t,
		[]mapping.EquivalenceRelation{{Source: conceptA, Target: conceptB}},
		nil, conceptB, mapping.NewAvailableSet(conceptA))

	_, err := NewRunner(NewRegistry()).Run(context.Background(), plan, map[mapping.Concept]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnboundConcept)
}

func TestRunnerCallableFailurePropagates(t *testing.T) {
	plan := resolvePlan(t, nil,
		[]mapping.TransformationDescriptor{
			{ID: "f", Inputs: []mapping.Concept{conceptA}, Outputs: []mapping.Concept{conceptB}, Cost: 1},
		},
		conceptB, mapping.NewAvailableSet(conceptA))

	boom := fmt.Errorf("conversion overflow")
	reg := NewRegistry()
	require.NoError(t, reg.Register("f", func(context.Context, []any) ([]any, error) {
		return nil, boom
	}))

	_, err := NewRunner(reg).Run(context.Background(), plan, map[mapping.Concept]any{conceptA: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRunnerNilPlan(t *testing.T) {
	_, err := NewRunner(NewRegistry()).Run(context.Background(), nil, nil)
	assert.Error(t, err)
}

// Soundness property: a symbolic run of any materialized plan yields a
// value bound to the originally requested target concept.
func TestSymbolicExecutorSoundness(t *testing.T) {
	plan := resolvePlan(t,
		[]mapping.EquivalenceRelation{
			{Source: conceptA, Target: conceptB, Cost: 1},
			{Source: conceptA, Target: conceptC, Cost: 1},
		},
		[]mapping.TransformationDescriptor{
			{ID: "http://func.example/merge", Inputs: []mapping.Concept{conceptB, conceptC}, Outputs: []mapping.Concept{conceptZ}, Cost: 1},
		},
		conceptZ, mapping.NewAvailableSet(conceptA))

	bound, err := NewSymbolicExecutor().Run(context.Background(), plan)
	require.NoError(t, err)

	value, ok := bound[conceptZ]
	require.True(t, ok)
	assert.Equal(t, "merge(value(A), value(A))", value)
}
