// Package tripper resolves how a target concept can be derived from a
// set of available concepts, given equivalence assertions and
// transformation function descriptions expressed as semantic triples.
//
// # Layout
//
// The module is split into small collaborating packages:
//
//   - triple and vocabulary define the fact representation and the IRI
//     scheme the knowledge sources speak.
//   - triplestore parses facts from an in-memory store, a YAML
//     knowledge document, or a NATS request/reply endpoint into the
//     relations and descriptors the resolver consumes.
//   - mapping holds the core engine: the GraphIndex over producers,
//     the backward-chaining Resolver, route selection and enumeration
//     by cost, and plan materialization.
//   - executor runs materialized plans against registered callables,
//     or symbolically for inspection.
//   - errors and pkg/retry carry the shared error classification and
//     backoff machinery used across the collaborators.
//
// The cmd/mapper binary ties these together into a command line tool
// that prints ranked execution plans for a target concept.
package tripper
