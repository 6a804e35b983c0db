package mapping

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

// PlanOp is the instruction kind of a plan step.
type PlanOp int

const (
	// OpFetch pulls the value for a concept from the available set.
	OpFetch PlanOp = iota
	// OpRebind aliases an already-produced value under another concept.
	// Pass-through equivalence steps flatten to rebinds; no callable is
	// invoked.
	OpRebind
	// OpInvoke calls the registered callable of a descriptor.
	OpInvoke
)

// String returns the string representation of PlanOp
func (op PlanOp) String() string {
	switch op {
	case OpFetch:
		return "fetch"
	case OpRebind:
		return "rebind"
	case OpInvoke:
		return "invoke"
	default:
		return "unknown"
	}
}

// PlanStep is one executable instruction of an ExecutionPlan.
type PlanStep struct {
	Op PlanOp

	// DescriptorID names the callable for OpInvoke steps.
	DescriptorID string

	// Args are the concepts whose bound values feed this step: the
	// descriptor's inputs in declaration order for OpInvoke, the
	// equivalence source for OpRebind, empty for OpFetch.
	Args []Concept

	// Binds are the concepts this step produces values for: every
	// declared output of the descriptor for OpInvoke (a multi-output
	// function binds all its outputs in one invocation), a single
	// concept otherwise.
	Binds []Concept

	// Cost is the step's own cost, excluding inputs.
	Cost float64
}

// ExecutionPlan is the topologically ordered linearization of a Route:
// every step's argument concepts are bound by earlier steps. The
// resolver never executes a plan itself; the executor collaborator
// consumes it.
type ExecutionPlan struct {
	ID        string
	Target    Concept
	Steps     []PlanStep
	TotalCost float64
}

// Materialize flattens a chosen route into an ExecutionPlan.
//
// Steps are emitted depth-first so that every required input concept is
// bound before the step that consumes it. A concept bound earlier is
// never re-emitted, and a multi-output descriptor is invoked once even
// when the route derives several of its outputs.
//
// The cycle check is defensive: the resolver's per-branch path guard
// makes a cyclic route impossible, so an ErrCyclicPlan here is an
// internal bug, not a user error.
func Materialize(route *Route) (*ExecutionPlan, error) {
	if route == nil || route.StepFor(route.target) == nil {
		return nil, errors.WrapInvalid(errors.ErrNoRouteFound, "RouteMaterializer", "Materialize", "read route")
	}

	m := &materializer{
		route:   route,
		bound:   make(map[Concept]bool),
		onPath:  make(map[Concept]bool),
		invoked: make(map[string]bool),
	}
	if err := m.emit(route.target); err != nil {
		return nil, err
	}

	return &ExecutionPlan{
		ID:        uuid.NewString(),
		Target:    route.target,
		Steps:     m.steps,
		TotalCost: route.TotalCost(),
	}, nil
}

type materializer struct {
	route   *Route
	steps   []PlanStep
	bound   map[Concept]bool
	onPath  map[Concept]bool
	invoked map[string]bool
}

func (m *materializer) emit(c Concept) error {
	if m.bound[c] {
		return nil
	}
	if m.onPath[c] {
		return errors.WrapFatal(
			fmt.Errorf("%w: concept %q is its own ancestor", errors.ErrCyclicPlan, c),
			"RouteMaterializer", "Materialize", "order steps")
	}

	step := m.route.StepFor(c)
	if step == nil {
		return errors.WrapFatal(
			fmt.Errorf("%w: no chosen step for required concept %q", errors.ErrCyclicPlan, c),
			"RouteMaterializer", "Materialize", "order steps")
	}

	m.onPath[c] = true
	defer delete(m.onPath, c)

	for _, in := range step.Inputs {
		if err := m.emit(in.Concept); err != nil {
			return err
		}
	}

	switch step.Kind {
	case StepSource:
		m.steps = append(m.steps, PlanStep{
			Op:    OpFetch,
			Binds: []Concept{c},
		})
		m.bound[c] = true

	case StepEquivalence:
		m.steps = append(m.steps, PlanStep{
			Op:    OpRebind,
			Args:  []Concept{step.Equivalence.Source},
			Binds: []Concept{c},
			Cost:  step.StepCost,
		})
		m.bound[c] = true

	case StepTransformation:
		desc := step.Transformation
		if !m.invoked[desc.ID] {
			m.invoked[desc.ID] = true
			m.steps = append(m.steps, PlanStep{
				Op:           OpInvoke,
				DescriptorID: desc.ID,
				Args:         append([]Concept(nil), desc.Inputs...),
				Binds:        append([]Concept(nil), desc.Outputs...),
				Cost:         step.StepCost,
			})
		}
		// One invocation binds every declared output.
		for _, out := range desc.Outputs {
			m.bound[out] = true
		}

	default:
		return errors.WrapFatal(
			fmt.Errorf("%w: unknown step kind %d", errors.ErrCyclicPlan, step.Kind),
			"RouteMaterializer", "Materialize", "order steps")
	}

	return nil
}
