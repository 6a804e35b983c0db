// Package vocabulary provides the ontology vocabulary consumed by the
// mapping resolver: predicate IRIs for equivalence and function
// description statements, plus helpers for building concept IRIs.
package vocabulary

// Base IRI constants for the mapping vocabulary
const (
	// MappingsBase is the namespace for mapping-specific predicates.
	MappingsBase = "https://w3id.org/emmc/mappings"

	// RDFBase and RDFSBase are the standard RDF namespaces referenced
	// by knowledge-base statements.
	RDFBase  = "http://www.w3.org/1999/02/22-rdf-syntax-ns"
	RDFSBase = "http://www.w3.org/2000/01/rdf-schema"
)

// Statement predicates understood by the triplestore fact sources.
//
// An equivalence assertion is a single statement:
//
//	(fieldIRI, MapsTo, conceptIRI)
//
// optionally annotated with (fieldIRI, HasCost, literal). SubClassOf
// statements are treated as equivalences too, since a value bound to a
// subclass concept is usable wherever the superclass is expected.
//
// A function description spans several statements:
//
//	(fnIRI, Type, Function)
//	(fnIRI, HasInput, paramIRI)      one per parameter
//	(paramIRI, HasIndex, literal)    zero-based argument position
//	(paramIRI, HasConcept, conceptIRI)
//	(fnIRI, HasOutput, conceptIRI)   one per return value
//	(fnIRI, HasCost, literal)        optional
const (
	// Type is rdf:type.
	Type = RDFBase + "#type"
	// SubClassOf is rdfs:subClassOf.
	SubClassOf = RDFSBase + "#subClassOf"

	// MapsTo asserts that a data field is semantically equivalent to an
	// ontological concept.
	MapsTo = MappingsBase + "#mapsTo"
	// HasCost is a float64 literal, the pass-through or invocation cost.
	HasCost = MappingsBase + "#hasCost"

	// Function is the class of transformation descriptors.
	Function = MappingsBase + "#Function"
	// HasInput links a function to one of its parameter resources.
	HasInput = MappingsBase + "#hasInput"
	// HasOutput links a function to one of its output concepts.
	HasOutput = MappingsBase + "#hasOutput"
	// HasIndex is an int literal, the zero-based argument position of a
	// parameter resource.
	HasIndex = MappingsBase + "#hasIndex"
	// HasConcept links a parameter resource to the concept it consumes.
	HasConcept = MappingsBase + "#hasConcept"
)
