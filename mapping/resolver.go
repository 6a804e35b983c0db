package mapping

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

const (
	// DefaultMaxDepth is the default recursion depth limit
	DefaultMaxDepth = 64

	// MaxDepthLimit is the maximum allowed recursion depth limit
	MaxDepthLimit = 4096
)

// Resolver performs the backward-chaining search: given a target
// concept and a set of available concepts, it constructs the derivation
// DAG over the shared GraphIndex.
//
// A Resolver is safe for concurrent use: every Resolve call owns a
// fresh session node table and path state, and the index is read-only.
type Resolver struct {
	index    *GraphIndex
	maxDepth int
	metrics  *Metrics
	logger   *slog.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithMaxDepth sets the recursion depth limit with validation
func WithMaxDepth(depth int) ResolverOption {
	return func(r *Resolver) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}
		if depth > MaxDepthLimit {
			depth = MaxDepthLimit
		}
		r.maxDepth = depth
	}
}

// WithMetrics attaches prometheus metrics recording
func WithMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithLogger sets the structured logger for resolution diagnostics
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over an immutable GraphIndex
func NewResolver(index *GraphIndex, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		index:    index,
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// session holds the per-resolution state: the node table (memoization,
// keyed by concept), the depth at which each concept on the current DFS
// path was entered, and visit accounting. The recursion path is tracked
// through NodeResolving states in the table, which is equivalent to a
// path-visited set since only nodes on the current DFS path can be in
// that state. Everything here is discarded when Resolve returns.
type session struct {
	nodes map[Concept]*ValueNode

	// depths records the depth at which each NodeResolving concept was
	// entered on the current path.
	depths map[Concept]int

	// pending marks branch-local results: concepts whose exploration
	// was truncated by a cycle cut on an ancestor. The value is the
	// anchor, the path depth of that ancestor; the result stays valid
	// exactly as long as the anchor frame is still on the path.
	pending map[Concept]int

	visited int
}

// purge drops every branch-local result anchored at or below the
// frame that is popping. Called on each frame completion, so anchors
// never go stale: a depth seen in pending always refers to the node
// currently (or just) at that path position.
func (s *session) purge(depth int) {
	for c, anchor := range s.pending {
		if anchor >= depth {
			delete(s.nodes, c)
			delete(s.pending, c)
		}
	}
}

const (
	// cutNone reports that no cycle or depth cut was observed in a
	// subtree. Any real cut carries a path depth strictly below it.
	cutNone = math.MaxInt

	// cutDepthLimit marks a branch truncated by the recursion depth
	// limit. Unlike a cycle cut it has no anchoring path frame, so
	// results contaminated by it are never kept, not even
	// branch-locally.
	cutDepthLimit = -1
)

// Resolve runs the depth-first, memoized, cycle-guarded search and
// returns the root ValueNode for the target concept.
//
// Individual unreachable branches are pruned silently; the call fails
// with an error wrapping errors.ErrNoRouteFound only when the root
// itself ends up unreachable. The context is checked on every node
// visit, so cancellation surfaces promptly on large graphs.
func (r *Resolver) Resolve(ctx context.Context, target Concept, available AvailableSet) (*ValueNode, error) {
	if r.index == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Resolver", "Resolve", "index is nil")
	}
	if target == "" {
		return nil, errors.WrapInvalid(errors.ErrEmptyConcept, "Resolver", "Resolve", "validate target")
	}

	start := time.Now()
	sess := &session{
		nodes:   make(map[Concept]*ValueNode),
		depths:  make(map[Concept]int),
		pending: make(map[Concept]int),
	}

	root, _, err := r.resolve(ctx, sess, target, available, 0)
	if err != nil {
		r.metrics.RecordResolution("error", time.Since(start), sess.visited)
		return nil, err
	}

	if root == nil || root.State != NodeResolved {
		r.metrics.RecordResolution("no_route", time.Since(start), sess.visited)
		r.logger.Debug("no derivation route",
			"target", target,
			"available", available.Strings(),
			"nodes_visited", sess.visited)
		return nil, errors.NewNoRouteError(string(target), available.Strings())
	}

	r.metrics.RecordResolution("resolved", time.Since(start), sess.visited)
	r.logger.Debug("target resolved",
		"target", target,
		"candidates", len(root.Candidates),
		"nodes_visited", sess.visited)
	return root, nil
}

// RoutesByCost enumerates the derivations of a resolved root in
// non-decreasing cost order, recording the enumeration size when
// metrics are attached. See the package-level RoutesByCost for the
// enumeration contract.
func (r *Resolver) RoutesByCost(root *ValueNode) *RouteIterator {
	it := RoutesByCost(root)
	r.metrics.RecordRoutes(it.Len())
	return it
}

// Materialize flattens a route into an ExecutionPlan, recording the
// plan size when metrics are attached. See the package-level
// Materialize for the ordering contract.
func (r *Resolver) Materialize(route *Route) (*ExecutionPlan, error) {
	plan, err := Materialize(route)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPlan(len(plan.Steps))
	return plan, nil
}

// resolve returns the ValueNode for target, or nil when the concept is
// unreachable on the current branch (cycle cut or depth limit). A nil
// node is not an error: the same concept may still resolve through a
// different, acyclic branch elsewhere, and only the root caller turns
// total failure into ErrNoRouteFound.
//
// The second return value is the lowest path depth any cycle cut in
// the subtree reached (cutNone when no cut happened). A result built
// while a cut reached ABOVE this frame's depth only holds while that
// ancestor is on the path: the exploration excluded derivations through
// it, and other branches may not have it as an ancestor at all. Such
// results are kept branch-locally (sess.pending, purged when the
// anchoring frame pops) so a clean branch re-explores the concept. A
// cut that loops back to this concept itself excludes only derivations
// no valid route could use anyway, so that result is memoized for the
// whole session.
func (r *Resolver) resolve(ctx context.Context, sess *session, target Concept, available AvailableSet, depth int) (*ValueNode, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, cutNone, err
	}

	if node, ok := sess.nodes[target]; ok {
		switch node.State {
		case NodeResolved, NodeUnreachable:
			// A branch-local result propagates its anchor so every
			// consumer stays branch-local too.
			if anchor, branchLocal := sess.pending[target]; branchLocal {
				return node, anchor, nil
			}
			return node, cutNone, nil
		case NodeResolving:
			// target is its own ancestor: cut this branch only, and
			// report how far up the path the cut reaches.
			return nil, sess.depths[target], nil
		}
	}

	if depth >= r.maxDepth {
		return nil, cutDepthLimit, nil
	}

	node := &ValueNode{Concept: target, State: NodeResolving}
	sess.nodes[target] = node
	sess.depths[target] = depth
	sess.visited++

	if available.Has(target) {
		// Direct availability always yields a zero-cost source
		// candidate, but other candidates are still discovered below
		// for cost comparison and execution-time fallback.
		node.Candidates = append(node.Candidates, &StepNode{Kind: StepSource})
	}

	low := cutNone
	for _, producer := range r.index.StepsProducing(target) {
		var step *StepNode
		var stepLow int
		var err error
		switch {
		case producer.Equivalence != nil:
			step, stepLow, err = r.resolveEquivalence(ctx, sess, producer.Equivalence, available, depth)
		case producer.Transformation != nil:
			step, stepLow, err = r.resolveTransformation(ctx, sess, producer.Transformation, available, depth)
		default:
			continue
		}
		if err != nil {
			return nil, cutNone, err
		}
		if stepLow < low {
			low = stepLow
		}
		if step != nil {
			node.Candidates = append(node.Candidates, step)
		}
	}

	delete(sess.depths, target)

	if len(node.Candidates) > 0 {
		node.State = NodeResolved
	} else {
		node.State = NodeUnreachable
	}

	// This frame pops now: branch-local results anchored to it or
	// deeper lose their validity.
	sess.purge(depth)

	switch {
	case low == cutDepthLimit:
		delete(sess.nodes, target)
	case low < depth:
		sess.pending[target] = low
	}

	if low < depth {
		return node, low, nil
	}
	return node, cutNone, nil
}

// resolveEquivalence resolves the relation's source concept and, on
// success, returns a pass-through step candidate.
func (r *Resolver) resolveEquivalence(ctx context.Context, sess *session, rel *EquivalenceRelation, available AvailableSet, depth int) (*StepNode, int, error) {
	source, low, err := r.resolve(ctx, sess, rel.Source, available, depth+1)
	if err != nil {
		return nil, cutNone, err
	}
	if source == nil || source.State != NodeResolved {
		return nil, low, nil
	}
	return &StepNode{
		Kind:        StepEquivalence,
		Equivalence: rel,
		Inputs:      []*ValueNode{source},
		StepCost:    rel.Cost,
	}, low, nil
}

// resolveTransformation resolves every input concept of the descriptor.
// Only if all of them resolve (AND semantics) does it return a
// candidate; one unreachable input discards the whole step.
func (r *Resolver) resolveTransformation(ctx context.Context, sess *session, desc *TransformationDescriptor, available AvailableSet, depth int) (*StepNode, int, error) {
	low := cutNone
	inputs := make([]*ValueNode, 0, len(desc.Inputs))
	for _, in := range desc.Inputs {
		inputNode, inLow, err := r.resolve(ctx, sess, in, available, depth+1)
		if err != nil {
			return nil, cutNone, err
		}
		if inLow < low {
			low = inLow
		}
		if inputNode == nil || inputNode.State != NodeResolved {
			return nil, low, nil
		}
		inputs = append(inputs, inputNode)
	}
	return &StepNode{
		Kind:           StepTransformation,
		Transformation: desc,
		Inputs:         inputs,
		StepCost:       desc.Cost,
	}, low, nil
}
