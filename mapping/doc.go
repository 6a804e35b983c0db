// Package mapping implements the mapping-route resolution engine: a
// backward-chaining AND/OR search over a bipartite concept and
// transformation graph.
//
// # Overview
//
// The knowledge base supplies two kinds of facts: equivalence relations
// (a data field is semantically equivalent to an ontological concept)
// and transformation descriptors (a callable consuming values bound to
// input concepts and producing values bound to output concepts, at a
// cost). Given a target concept and the set of concepts the caller
// already holds values for, the engine determines whether the target
// can be computed, ranks alternative derivations by cost, and flattens
// the chosen derivation into an executable plan.
//
// # Components
//
//   - GraphIndex: read-only concept -> producer and descriptor -> input
//     index, built once per session from collaborator facts and shared
//     across concurrent resolutions.
//   - Resolver: depth-first memoized search with per-branch cycle
//     cutting. Produces a DAG of ValueNodes (OR over candidates) and
//     StepNodes (AND over required inputs).
//   - BestRoute / RoutesByCost: cost aggregation and enumeration of
//     alternative derivations in non-decreasing cost order.
//   - Materialize: topological linearization into an ExecutionPlan the
//     executor collaborator can run.
//
// # Usage
//
//	ix, err := mapping.BuildIndex(equivalences, transformations)
//	if err != nil { ... }
//
//	r := mapping.NewResolver(ix)
//	root, err := r.Resolve(ctx, target, mapping.NewAvailableSet(held...))
//	if err != nil { ... } // errors.ErrNoRouteFound is routine
//
//	route, err := mapping.BestRoute(root)
//	if err != nil { ... }
//	plan, err := mapping.Materialize(route)
//
// # Concurrency
//
// One resolution call is single-threaded and synchronous; it performs
// no I/O beyond read-only index lookups. The index is immutable, and
// every call owns its node table, so independent resolutions may run in
// parallel over one index without locking.
package mapping
