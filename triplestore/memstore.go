package triplestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
	"github.com/EMMC-ASBL/tripper-sub000/triple"
	"github.com/EMMC-ASBL/tripper-sub000/vocabulary"
)

const (
	// DefaultEquivalenceCost is applied to mapsTo/subClassOf assertions
	// without an explicit cost annotation.
	DefaultEquivalenceCost = 0.0

	// DefaultTransformationCost is applied to function descriptions
	// without an explicit cost annotation. Non-zero so that a real
	// invocation is never free.
	DefaultTransformationCost = 1.0
)

// MemStore is an in-memory bag of triples implementing Source. Facts
// are derived on demand from the statements described in the vocabulary
// package: mapsTo/subClassOf equivalences and Function descriptions.
type MemStore struct {
	mu      sync.RWMutex
	triples []triple.Triple

	equivalenceCost    float64
	transformationCost float64
}

// MemStoreOption configures a MemStore
type MemStoreOption func(*MemStore)

// WithDefaultCosts overrides the default equivalence and transformation
// costs applied when a statement carries no cost annotation.
func WithDefaultCosts(equivalence, transformation float64) MemStoreOption {
	return func(s *MemStore) {
		s.equivalenceCost = equivalence
		s.transformationCost = transformation
	}
}

// NewMemStore creates an empty in-memory triple store
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		equivalenceCost:    DefaultEquivalenceCost,
		transformationCost: DefaultTransformationCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTriples appends statements to the store. Statement order is
// preserved: fact extraction iterates in insertion order, which fixes
// candidate discovery order downstream.
func (s *MemStore) AddTriples(ts ...triple.Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triples = append(s.triples, ts...)
}

// Len returns the number of stored triples.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}

// EquivalenceRelations derives equivalence facts from mapsTo and
// subClassOf statements. A subClassOf statement is an equivalence too:
// a value bound to the subclass is usable wherever the superclass is
// expected.
//
// Cost annotations are per subject, not per statement: a hasCost on a
// source concept applies to every mapsTo/subClassOf assertion it makes.
// Individual relations cannot carry distinct costs in triple form;
// sources needing that use a FileStore or NATSStore document, where
// cost is a per-relation field.
func (s *MemStore) EquivalenceRelations(_ context.Context) ([]mapping.EquivalenceRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	costs, err := s.costAnnotations()
	if err != nil {
		return nil, err
	}

	var out []mapping.EquivalenceRelation
	for _, t := range s.triples {
		if t.Predicate != vocabulary.MapsTo && t.Predicate != vocabulary.SubClassOf {
			continue
		}
		target, ok := t.ObjectIRI()
		if !ok {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %q maps to non-IRI object %v", errors.ErrMalformedFact, t.Subject, t.Object),
				"MemStore", "EquivalenceRelations", "parse statement")
		}
		cost := s.equivalenceCost
		if c, annotated := costs[t.Subject]; annotated {
			cost = c
		}
		out = append(out, mapping.EquivalenceRelation{
			Source: mapping.Concept(t.Subject),
			Target: mapping.Concept(target),
			Cost:   cost,
		})
	}
	return out, nil
}

// Transformations derives transformation descriptors from Function
// descriptions: hasInput parameter resources ordered by hasIndex,
// hasOutput concepts, optional hasCost.
func (s *MemStore) Transformations(_ context.Context) ([]mapping.TransformationDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	costs, err := s.costAnnotations()
	if err != nil {
		return nil, err
	}

	// Function subjects in declaration order.
	var fns []string
	isFn := map[string]bool{}
	for _, t := range s.triples {
		if t.Predicate != vocabulary.Type {
			continue
		}
		if obj, ok := t.ObjectIRI(); ok && obj == vocabulary.Function && !isFn[t.Subject] {
			isFn[t.Subject] = true
			fns = append(fns, t.Subject)
		}
	}

	var out []mapping.TransformationDescriptor
	for _, fn := range fns {
		desc, err := s.describeFunction(fn, costs)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

type parameter struct {
	index   int
	concept string
}

func (s *MemStore) describeFunction(fn string, costs map[string]float64) (mapping.TransformationDescriptor, error) {
	var zero mapping.TransformationDescriptor

	var params []parameter
	var outputs []mapping.Concept

	for _, t := range s.triples {
		if t.Subject != fn {
			continue
		}
		switch t.Predicate {
		case vocabulary.HasInput:
			paramIRI, ok := t.ObjectIRI()
			if !ok {
				return zero, malformedFact("MemStore", fn, "hasInput object is not an IRI")
			}
			p, err := s.describeParameter(fn, paramIRI)
			if err != nil {
				return zero, err
			}
			params = append(params, p)
		case vocabulary.HasOutput:
			outIRI, ok := t.ObjectIRI()
			if !ok {
				return zero, malformedFact("MemStore", fn, "hasOutput object is not an IRI")
			}
			outputs = append(outputs, mapping.Concept(outIRI))
		}
	}

	// Parameter indexes must be dense 0..n-1; argument binding order
	// depends on them.
	sort.Slice(params, func(i, j int) bool { return params[i].index < params[j].index })
	inputs := make([]mapping.Concept, 0, len(params))
	for i, p := range params {
		if p.index != i {
			return zero, malformedFact("MemStore", fn, fmt.Sprintf("parameter indexes are not dense at %d", p.index))
		}
		inputs = append(inputs, mapping.Concept(p.concept))
	}

	cost := s.transformationCost
	if c, annotated := costs[fn]; annotated {
		cost = c
	}

	return mapping.TransformationDescriptor{
		ID:      fn,
		Inputs:  inputs,
		Outputs: outputs,
		Cost:    cost,
	}, nil
}

func (s *MemStore) describeParameter(fn, paramIRI string) (parameter, error) {
	p := parameter{index: -1}
	for _, t := range s.triples {
		if t.Subject != paramIRI {
			continue
		}
		switch t.Predicate {
		case vocabulary.HasIndex:
			idx, ok := t.ObjectInt()
			if !ok || idx < 0 {
				return p, malformedFact("MemStore", fn, fmt.Sprintf("parameter %q has invalid index %v", paramIRI, t.Object))
			}
			p.index = idx
		case vocabulary.HasConcept:
			concept, ok := t.ObjectIRI()
			if !ok {
				return p, malformedFact("MemStore", fn, fmt.Sprintf("parameter %q concept is not an IRI", paramIRI))
			}
			p.concept = concept
		}
	}
	if p.index < 0 {
		return p, malformedFact("MemStore", fn, fmt.Sprintf("parameter %q has no hasIndex statement", paramIRI))
	}
	if p.concept == "" {
		return p, malformedFact("MemStore", fn, fmt.Sprintf("parameter %q has no hasConcept statement", paramIRI))
	}
	return p, nil
}

// costAnnotations collects hasCost literals by subject.
func (s *MemStore) costAnnotations() (map[string]float64, error) {
	costs := make(map[string]float64)
	for _, t := range s.triples {
		if t.Predicate != vocabulary.HasCost {
			continue
		}
		c, ok := t.ObjectFloat()
		if !ok {
			return nil, malformedFact("MemStore", t.Subject, fmt.Sprintf("hasCost object %v is not numeric", t.Object))
		}
		costs[t.Subject] = c
	}
	return costs, nil
}

func malformedFact(component, subject, detail string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: subject %q: %s", errors.ErrMalformedFact, subject, detail),
		component, "parse", "extract fact")
}
