package mapping

// NodeState tracks a ValueNode through the resolution lifecycle.
type NodeState int

const (
	// NodeUnresolved means the concept has not been visited yet.
	NodeUnresolved NodeState = iota
	// NodeResolving means the concept is on the current recursion path.
	NodeResolving
	// NodeResolved means at least one candidate step produces the concept.
	NodeResolved
	// NodeUnreachable means no candidate step produces the concept.
	NodeUnreachable
)

// String returns the string representation of NodeState
func (s NodeState) String() string {
	switch s {
	case NodeUnresolved:
		return "unresolved"
	case NodeResolving:
		return "resolving"
	case NodeResolved:
		return "resolved"
	case NodeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// StepKind is the closed set of derivation step variants. Exhaustive
// switches over StepKind at the cost and materializer boundaries are a
// correctness-critical property; any new kind must be handled there.
type StepKind int

const (
	// StepSource is a leaf: the concept is directly in the available set.
	StepSource StepKind = iota
	// StepEquivalence passes a value through a semantic equivalence.
	StepEquivalence
	// StepTransformation invokes a registered callable.
	StepTransformation
)

// String returns the string representation of StepKind
func (k StepKind) String() string {
	switch k {
	case StepSource:
		return "source"
	case StepEquivalence:
		return "equivalence"
	case StepTransformation:
		return "transformation"
	default:
		return "unknown"
	}
}

// ValueNode represents "this concept, resolved": an OR over alternative
// candidate steps. Nodes are owned by the per-session node table, keyed
// by concept, created lazily on first visit and mutated only by the
// resolver during the search. Once State reaches NodeResolved or
// NodeUnreachable the node is immutable.
type ValueNode struct {
	Concept    Concept
	Candidates []*StepNode
	State      NodeState

	bestCached *StepNode
}

// StepNode represents one way of producing its owning ValueNode's
// concept: a direct fetch from the available set, an equivalence
// pass-through, or a transformation invocation. Its Inputs must ALL
// resolve (AND semantics). Input nodes are non-owning references and
// may be shared with other steps when several transformations require
// the same concept, so the derivation structure is a DAG, not a tree.
type StepNode struct {
	Kind           StepKind
	Equivalence    *EquivalenceRelation      // set when Kind == StepEquivalence
	Transformation *TransformationDescriptor // set when Kind == StepTransformation
	Inputs         []*ValueNode

	// StepCost is the cost of this step alone, excluding inputs.
	StepCost float64

	totalCached float64
	totalSet    bool
}

// TotalCost is StepCost plus the best total cost of every required
// input. It is only defined once every input is resolved, which the
// resolver guarantees before adding a step as a candidate. The value is
// cached: nodes are immutable after resolution.
func (s *StepNode) TotalCost() float64 {
	if s.totalSet {
		return s.totalCached
	}
	total := s.StepCost
	for _, in := range s.Inputs {
		total += in.BestCost()
	}
	s.totalCached = total
	s.totalSet = true
	return total
}

// Best returns the candidate with the lowest TotalCost. When two
// candidates tie, the one discovered first wins: discovery order is
// deterministic (source step, then equivalences, then transformations,
// each in index insertion order), so route selection is reproducible.
// Returns nil for unreachable or unresolved nodes.
func (n *ValueNode) Best() *StepNode {
	if n.bestCached != nil {
		return n.bestCached
	}
	if n.State != NodeResolved {
		return nil
	}

	var best *StepNode
	for _, cand := range n.Candidates {
		if best == nil || cand.TotalCost() < best.TotalCost() {
			best = cand
		}
	}
	n.bestCached = best
	return best
}

// BestCost returns the total cost of the best candidate.
func (n *ValueNode) BestCost() float64 {
	best := n.Best()
	if best == nil {
		return 0
	}
	return best.TotalCost()
}

// DescriptorID returns the transformation descriptor ID, or "" for
// source and equivalence steps.
func (s *StepNode) DescriptorID() string {
	if s.Kind == StepTransformation && s.Transformation != nil {
		return s.Transformation.ID
	}
	return ""
}
