package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/EMMC-ASBL/tripper-sub000/mapping"
	"github.com/EMMC-ASBL/tripper-sub000/vocabulary"
)

// SymbolicExecutor runs a plan with purely symbolic values: every
// invocation produces expression strings instead of calling real code.
// It backs soundness checks ("does executing this plan bind a value to
// the requested target?") without requiring registered callables.
type SymbolicExecutor struct{}

// NewSymbolicExecutor creates a symbolic plan executor
func NewSymbolicExecutor() *SymbolicExecutor {
	return &SymbolicExecutor{}
}

// Run executes the plan symbolically. Source concepts bind to
// "value(<fragment>)" terms and every invocation wraps its arguments in
// a named expression, so the target's final value records the whole
// derivation.
func (e *SymbolicExecutor) Run(ctx context.Context, plan *mapping.ExecutionPlan) (map[mapping.Concept]any, error) {
	registry := NewRegistry()
	available := make(map[mapping.Concept]any)

	for _, step := range plan.Steps {
		switch step.Op {
		case mapping.OpFetch:
			c := step.Binds[0]
			available[c] = fmt.Sprintf("value(%s)", vocabulary.Fragment(string(c)))
		case mapping.OpInvoke:
			if err := registry.Register(step.DescriptorID, symbolicCallable(step)); err != nil {
				return nil, err
			}
		}
	}

	runner := NewRunner(registry)
	return runner.Run(ctx, plan, available)
}

func symbolicCallable(step mapping.PlanStep) Callable {
	name := vocabulary.Fragment(step.DescriptorID)
	outputs := len(step.Binds)
	return func(_ context.Context, args []any) ([]any, error) {
		terms := make([]string, len(args))
		for i, a := range args {
			terms[i] = fmt.Sprint(a)
		}
		expr := fmt.Sprintf("%s(%s)", name, strings.Join(terms, ", "))

		results := make([]any, outputs)
		for i := range results {
			if outputs > 1 {
				results[i] = fmt.Sprintf("%s[%d]", expr, i)
			} else {
				results[i] = expr
			}
		}
		return results, nil
	}
}
