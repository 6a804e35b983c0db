package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
)

// Runner executes plans against a callable registry.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the structured logger for execution diagnostics
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a plan runner over a registry
func NewRunner(registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a plan. available holds the caller's values for the
// concepts in the resolution's available set; the returned map holds
// every concept bound during execution, including the plan target.
//
// Steps execute in plan order: fetch steps pull from available, rebind
// steps alias an already-bound value under another concept, and invoke
// steps call the registered callable with arguments bound in descriptor
// input order, storing each result under the corresponding output
// concept. Execution stops at the first failing step; no partial
// result map is returned.
func (r *Runner) Run(ctx context.Context, plan *mapping.ExecutionPlan, available map[mapping.Concept]any) (map[mapping.Concept]any, error) {
	if plan == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Runner", "Run", "nil plan")
	}

	bound := make(map[mapping.Concept]any, len(plan.Steps))

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch step.Op {
		case mapping.OpFetch:
			c := step.Binds[0]
			value, ok := available[c]
			if !ok {
				return nil, errors.WrapInvalid(
					fmt.Errorf("%w: %q expected in available values", errors.ErrUnboundConcept, c),
					"Runner", "Run", "fetch value")
			}
			bound[c] = value

		case mapping.OpRebind:
			value, ok := bound[step.Args[0]]
			if !ok {
				return nil, errors.WrapFatal(
					fmt.Errorf("%w: rebind source %q at step %d", errors.ErrUnboundConcept, step.Args[0], i),
					"Runner", "Run", "rebind value")
			}
			bound[step.Binds[0]] = value

		case mapping.OpInvoke:
			if err := r.invoke(ctx, step, bound); err != nil {
				return nil, err
			}

		default:
			return nil, errors.WrapFatal(
				fmt.Errorf("unknown plan op %d at step %d", step.Op, i),
				"Runner", "Run", "dispatch step")
		}
	}

	if _, ok := bound[plan.Target]; !ok {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: plan target %q", errors.ErrUnboundConcept, plan.Target),
			"Runner", "Run", "bind target")
	}

	r.logger.Debug("plan executed",
		"plan_id", plan.ID,
		"target", plan.Target,
		"steps", len(plan.Steps))
	return bound, nil
}

func (r *Runner) invoke(ctx context.Context, step mapping.PlanStep, bound map[mapping.Concept]any) error {
	fn, ok := r.registry.Lookup(step.DescriptorID)
	if !ok {
		return missingCallable(step.DescriptorID)
	}

	args := make([]any, len(step.Args))
	for j, c := range step.Args {
		value, okArg := bound[c]
		if !okArg {
			return errors.WrapFatal(
				fmt.Errorf("%w: argument %q of %q", errors.ErrUnboundConcept, c, step.DescriptorID),
				"Runner", "Run", "bind arguments")
		}
		args[j] = value
	}

	results, err := fn(ctx, args)
	if err != nil {
		return errors.Wrap(err, "Runner", "Run", fmt.Sprintf("invoke %q", step.DescriptorID))
	}
	if len(results) != len(step.Binds) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q returned %d values for %d outputs",
				errors.ErrArityMismatch, step.DescriptorID, len(results), len(step.Binds)),
			"Runner", "Run", "bind results")
	}

	for j, c := range step.Binds {
		bound[c] = results[j]
	}
	return nil
}
