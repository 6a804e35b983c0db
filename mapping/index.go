package mapping

import (
	"fmt"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
)

// ProducerStep is one way of producing a concept: exactly one of
// Equivalence or Transformation is non-nil.
type ProducerStep struct {
	Equivalence    *EquivalenceRelation
	Transformation *TransformationDescriptor
}

// GraphIndex is the read-only concept/transformation index a resolution
// session searches over. It is built once from collaborator facts and
// never mutated afterwards, so a single index is safe to share across
// concurrent resolutions.
type GraphIndex struct {
	// producers lists the steps that can produce each concept, in
	// insertion order: all equivalences first, then transformations.
	// Candidate discovery order (and therefore cost tie-breaking)
	// depends on this ordering.
	producers map[Concept][]ProducerStep

	// inputs maps descriptor ID to its ordered input concepts.
	inputs map[string][]Concept
}

// BuildIndex validates the raw facts and constructs a GraphIndex.
//
// It fails with an invalid-class error wrapping ErrMalformedRelation or
// ErrMalformedDescriptor when a fact cannot describe a usable step:
// empty concept IRIs, self-equivalences, negative costs, descriptors
// without ID or outputs, duplicate input or output concepts.
func BuildIndex(equivalences []EquivalenceRelation, transformations []TransformationDescriptor) (*GraphIndex, error) {
	ix := &GraphIndex{
		producers: make(map[Concept][]ProducerStep),
		inputs:    make(map[string][]Concept),
	}

	for i := range equivalences {
		rel := equivalences[i]
		if err := validateRelation(rel); err != nil {
			return nil, errors.WrapInvalid(err, "GraphIndex", "Build", "validate equivalence relation")
		}
		// Copy so later caller mutation of the input slice cannot
		// reach the index.
		relCopy := rel
		ix.producers[rel.Target] = append(ix.producers[rel.Target], ProducerStep{Equivalence: &relCopy})
	}

	for i := range transformations {
		desc := transformations[i]
		if err := validateDescriptor(desc); err != nil {
			return nil, errors.WrapInvalid(err, "GraphIndex", "Build", "validate transformation descriptor")
		}
		if _, exists := ix.inputs[desc.ID]; exists {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: duplicate descriptor ID %q", errors.ErrMalformedDescriptor, desc.ID),
				"GraphIndex", "Build", "validate transformation descriptor")
		}

		descCopy := desc
		descCopy.Inputs = append([]Concept(nil), desc.Inputs...)
		descCopy.Outputs = append([]Concept(nil), desc.Outputs...)

		ix.inputs[desc.ID] = descCopy.Inputs
		for _, out := range descCopy.Outputs {
			ix.producers[out] = append(ix.producers[out], ProducerStep{Transformation: &descCopy})
		}
	}

	return ix, nil
}

// StepsProducing returns the steps that can produce the given concept,
// in insertion order. The returned slice must not be modified.
func (ix *GraphIndex) StepsProducing(c Concept) []ProducerStep {
	return ix.producers[c]
}

// InputsOf returns the ordered input concepts of a descriptor.
func (ix *GraphIndex) InputsOf(descriptorID string) ([]Concept, bool) {
	inputs, ok := ix.inputs[descriptorID]
	return inputs, ok
}

// Descriptors returns the number of indexed transformation descriptors.
func (ix *GraphIndex) Descriptors() int {
	return len(ix.inputs)
}

func validateRelation(rel EquivalenceRelation) error {
	if rel.Source == "" || rel.Target == "" {
		return fmt.Errorf("%w: equivalence (%q -> %q)", errors.ErrEmptyConcept, rel.Source, rel.Target)
	}
	if rel.Source == rel.Target {
		return fmt.Errorf("%w: self-equivalence on %q", errors.ErrMalformedRelation, rel.Source)
	}
	if rel.Cost < 0 {
		return fmt.Errorf("%w: equivalence (%q -> %q) cost %v", errors.ErrNegativeCost, rel.Source, rel.Target, rel.Cost)
	}
	return nil
}

func validateDescriptor(desc TransformationDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("%w: descriptor without ID", errors.ErrMalformedDescriptor)
	}
	if len(desc.Outputs) == 0 {
		return fmt.Errorf("%w: descriptor %q declares no outputs", errors.ErrMalformedDescriptor, desc.ID)
	}
	if desc.Cost < 0 {
		return fmt.Errorf("%w: descriptor %q cost %v", errors.ErrNegativeCost, desc.ID, desc.Cost)
	}

	seen := make(map[Concept]struct{}, len(desc.Inputs))
	for _, in := range desc.Inputs {
		if in == "" {
			return fmt.Errorf("%w: descriptor %q input", errors.ErrEmptyConcept, desc.ID)
		}
		if _, dup := seen[in]; dup {
			return fmt.Errorf("%w: descriptor %q duplicates input %q", errors.ErrMalformedDescriptor, desc.ID, in)
		}
		seen[in] = struct{}{}
	}

	seenOut := make(map[Concept]struct{}, len(desc.Outputs))
	for _, out := range desc.Outputs {
		if out == "" {
			return fmt.Errorf("%w: descriptor %q output", errors.ErrEmptyConcept, desc.ID)
		}
		if _, dup := seenOut[out]; dup {
			return fmt.Errorf("%w: descriptor %q duplicates output %q", errors.ErrMalformedDescriptor, desc.ID, out)
		}
		seenOut[out] = struct{}{}
	}

	return nil
}
