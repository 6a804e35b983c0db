package mapping

import "sort"

// Concept is an ontological identifier a value can be semantically bound
// to. Concepts are opaque IRI strings, immutable and compared by value.
type Concept string

// String returns the concept IRI.
func (c Concept) String() string {
	return string(c)
}

// AvailableSet holds the concepts the caller already has values for.
// It is supplied per resolution call and treated as read-only during a
// single resolution.
type AvailableSet map[Concept]struct{}

// NewAvailableSet creates an AvailableSet from the given concepts.
func NewAvailableSet(concepts ...Concept) AvailableSet {
	s := make(AvailableSet, len(concepts))
	for _, c := range concepts {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the concept is directly available.
func (s AvailableSet) Has(c Concept) bool {
	_, ok := s[c]
	return ok
}

// Add inserts concepts into the set.
func (s AvailableSet) Add(concepts ...Concept) {
	for _, c := range concepts {
		s[c] = struct{}{}
	}
}

// Concepts returns a sorted snapshot of the set.
func (s AvailableSet) Concepts() []Concept {
	out := make([]Concept, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns a sorted snapshot of the set as plain strings, for
// error detail and logging.
func (s AvailableSet) Strings() []string {
	concepts := s.Concepts()
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = string(c)
	}
	return out
}

// EquivalenceRelation asserts that a value already bound to Source can
// be used directly as a value for Target at the given pass-through cost.
type EquivalenceRelation struct {
	Source Concept
	Target Concept
	Cost   float64
}

// TransformationDescriptor describes a registered callable: the ordered
// concepts its arguments consume, the concepts its return values bind,
// and its invocation cost.
//
// Inputs order matters for argument binding. Outputs may contain more
// than one concept (a function with multiple return values); resolving
// any one of them still produces all of them together.
type TransformationDescriptor struct {
	ID      string
	Inputs  []Concept
	Outputs []Concept
	Cost    float64
}

// Produces reports whether the descriptor outputs the given concept.
func (d TransformationDescriptor) Produces(c Concept) bool {
	for _, out := range d.Outputs {
		if out == c {
			return true
		}
	}
	return false
}
