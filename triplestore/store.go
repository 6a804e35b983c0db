// Package triplestore supplies the mapping resolver with raw facts:
// equivalence relations and transformation descriptors extracted from a
// semantic knowledge base. Implementations are read-only collaborators;
// any failure surfaces before index construction, never swallowed.
package triplestore

import (
	"context"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
)

// Source enumerates the raw facts needed to build a GraphIndex. Both
// operations are plain queries with no side effects.
type Source interface {
	// EquivalenceRelations returns every equivalence assertion in the
	// knowledge base.
	EquivalenceRelations(ctx context.Context) ([]mapping.EquivalenceRelation, error)

	// Transformations returns every transformation descriptor in the
	// knowledge base.
	Transformations(ctx context.Context) ([]mapping.TransformationDescriptor, error)
}

// BuildIndex fetches both fact kinds from the source and constructs the
// resolver's GraphIndex. Collaborator failures (connectivity, malformed
// facts) are returned as-is, before mapping.BuildIndex is invoked.
func BuildIndex(ctx context.Context, src Source) (*mapping.GraphIndex, error) {
	if src == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "triplestore", "BuildIndex", "source is nil")
	}

	equivalences, err := src.EquivalenceRelations(ctx)
	if err != nil {
		return nil, err
	}
	transformations, err := src.Transformations(ctx)
	if err != nil {
		return nil, err
	}

	return mapping.BuildIndex(equivalences, transformations)
}
