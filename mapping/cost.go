package mapping

import (
	"sort"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

// Route is one concrete, fully resolved derivation of a target concept:
// a single chosen StepNode per ValueNode along the path from the target
// down to source leaves. Routes are views over the session's node DAG;
// distinct routes returned by RoutesByCost share node structure.
type Route struct {
	target Concept
	steps  map[Concept]*StepNode
	total  float64
}

// Target returns the concept this route derives.
func (r *Route) Target() Concept {
	return r.target
}

// TotalCost returns the aggregated cost of the route: for every step,
// its own cost plus the chosen derivation cost of each required input.
func (r *Route) TotalCost() float64 {
	return r.total
}

// StepFor returns the chosen step for a concept, or nil when the
// concept does not participate in this route.
func (r *Route) StepFor(c Concept) *StepNode {
	return r.steps[c]
}

// Concepts returns the concepts participating in this route, sorted.
func (r *Route) Concepts() []Concept {
	out := make([]Concept, 0, len(r.steps))
	for c := range r.steps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BestRoute returns the minimum-total-cost derivation of the root node,
// recursively selecting at each ValueNode the cheapest candidate that
// stays consistent with the choices already made. Equal-cost candidates
// keep first-discovered order, so the selection is deterministic.
func BestRoute(root *ValueNode) (*Route, error) {
	if root == nil || root.State != NodeResolved {
		return nil, errors.WrapInvalid(errors.ErrNoRouteFound, "CostModel", "BestRoute", "select candidate")
	}

	route := &Route{
		target: root.Concept,
		steps:  make(map[Concept]*StepNode),
	}
	var journal []Concept
	if !chooseBest(root, route.steps, &journal) {
		return nil, errors.WrapInvalid(errors.ErrNoRouteFound, "CostModel", "BestRoute", "select candidate")
	}
	route.total = assignmentCost(root.Concept, route.steps, make(map[Concept]float64))
	return route, nil
}

// chooseBest assigns a candidate for node's concept, cheapest first, and
// recursively for the candidate's inputs. A concept can appear through
// two node handles: the handle inside a cycle-cut subtree offers fewer
// candidates than the one outside, and the step already assigned for the
// concept may not be among them. Such a combination is cyclic as a
// route, so the choice is undone and the next-cheapest candidate tried.
// The journal records assignments made under the current choice so a
// backtrack removes exactly those.
func chooseBest(node *ValueNode, steps map[Concept]*StepNode, journal *[]Concept) bool {
	if assigned, done := steps[node.Concept]; done {
		return offersStep(node, assigned)
	}

	for _, cand := range candidatesByCost(node) {
		mark := len(*journal)
		steps[node.Concept] = cand
		*journal = append(*journal, node.Concept)

		ok := true
		for _, in := range cand.Inputs {
			if !chooseBest(in, steps, journal) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
		for _, c := range (*journal)[mark:] {
			delete(steps, c)
		}
		*journal = (*journal)[:mark]
	}
	return false
}

// candidatesByCost orders candidates by total cost, keeping
// first-discovered order on ties.
func candidatesByCost(node *ValueNode) []*StepNode {
	if len(node.Candidates) < 2 {
		return node.Candidates
	}
	out := make([]*StepNode, len(node.Candidates))
	copy(out, node.Candidates)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalCost() < out[j].TotalCost() })
	return out
}

// offersStep reports whether the node has a candidate performing the
// same derivation as step. Candidates are compared by producer rather
// than by handle: two resolutions of one concept build distinct
// StepNodes that share the index's relation and descriptor pointers.
func offersStep(node *ValueNode, step *StepNode) bool {
	for _, cand := range node.Candidates {
		if cand.Kind == step.Kind && cand.Equivalence == step.Equivalence && cand.Transformation == step.Transformation {
			return true
		}
	}
	return false
}

// RouteIterator enumerates the alternative derivations of one resolved
// root in non-decreasing cost order. The sequence is finite: cycles
// were already cut during resolution, so the number of distinct
// candidate combinations in the DAG is bounded. Iterators share no
// state; a fresh RoutesByCost call re-enumerates from scratch.
type RouteIterator struct {
	routes []*Route
	pos    int
}

// Next returns the next cheapest route, or (nil, false) when the
// enumeration is exhausted.
func (it *RouteIterator) Next() (*Route, bool) {
	if it.pos >= len(it.routes) {
		return nil, false
	}
	r := it.routes[it.pos]
	it.pos++
	return r, true
}

// Len returns the number of distinct routes.
func (it *RouteIterator) Len() int {
	return len(it.routes)
}

// RoutesByCost enumerates every distinct derivation of the root in
// non-decreasing total cost order. Its first element equals the result
// of BestRoute, including the first-discovered tie-break. Callers that
// want a fallback if the cheapest route later fails at execution time
// simply keep pulling from the iterator.
func RoutesByCost(root *ValueNode) *RouteIterator {
	if root == nil || root.State != NodeResolved {
		return &RouteIterator{}
	}

	assignments := enumerate(root, map[Concept]*StepNode{})

	routes := make([]*Route, 0, len(assignments))
	for _, steps := range assignments {
		routes = append(routes, &Route{
			target: root.Concept,
			steps:  steps,
			total:  assignmentCost(root.Concept, steps, make(map[Concept]float64)),
		})
	}

	// Stable: equal-cost routes keep generation order, which follows
	// candidate discovery order.
	sort.SliceStable(routes, func(i, j int) bool { return routes[i].total < routes[j].total })

	return &RouteIterator{routes: routes}
}

// enumerate extends the partial assignment with every consistent choice
// of candidate for node's subgraph. A concept shared by several steps
// must use the same candidate everywhere within one route, so an
// already-assigned concept contributes exactly the existing assignment.
// The existing assignment must still be one this node handle offers:
// a handle inside a cycle-cut subtree excludes derivations through its
// ancestors, and an assignment it does not offer would close a cycle,
// so the partial is discarded.
func enumerate(node *ValueNode, assigned map[Concept]*StepNode) []map[Concept]*StepNode {
	if step, done := assigned[node.Concept]; done {
		if !offersStep(node, step) {
			return nil
		}
		return []map[Concept]*StepNode{assigned}
	}

	var out []map[Concept]*StepNode
	for _, cand := range node.Candidates {
		withCand := cloneAssignment(assigned)
		withCand[node.Concept] = cand

		partials := []map[Concept]*StepNode{withCand}
		for _, in := range cand.Inputs {
			var next []map[Concept]*StepNode
			for _, p := range partials {
				next = append(next, enumerate(in, p)...)
			}
			partials = next
		}
		out = append(out, partials...)
	}
	return out
}

func cloneAssignment(src map[Concept]*StepNode) map[Concept]*StepNode {
	dst := make(map[Concept]*StepNode, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// assignmentCost evaluates the recursive cost formula for a fixed
// assignment: step cost plus the derivation cost of each input. The
// memo is sound because one route fixes one step per concept.
func assignmentCost(c Concept, steps map[Concept]*StepNode, memo map[Concept]float64) float64 {
	if cost, ok := memo[c]; ok {
		return cost
	}
	step := steps[c]
	if step == nil {
		return 0
	}
	total := step.StepCost
	for _, in := range step.Inputs {
		total += assignmentCost(in.Concept, steps, memo)
	}
	memo[c] = total
	return total
}
