// Package triple defines the semantic statement type consumed by the
// triplestore fact sources.
package triple

import (
	"strings"
	"time"
)

// Triple represents a semantic statement following the
// Subject-Predicate-Object pattern. The mapping knowledge base is a bag
// of such statements: equivalence assertions between data fields and
// ontological concepts, and function descriptions declaring input and
// output concept bindings.
//
// Example statements describing a mapping knowledge base:
//   - ("http://data.example/field/t", "https://w3id.org/emmo/domain/mappings#mapsTo", "http://onto.example/Temperature")
//   - ("http://func.example/celsius2kelvin", "https://w3id.org/emmo/domain/mappings#hasInput", "http://onto.example/Celsius")
//   - ("http://func.example/celsius2kelvin", "https://w3id.org/emmo/domain/mappings#hasOutput", "http://onto.example/Kelvin")
type Triple struct {
	// Subject identifies the resource this triple describes, as an IRI.
	Subject string `json:"subject"`

	// Predicate identifies the semantic property, as an IRI.
	// Predicates consumed by the resolver are defined in the
	// vocabulary package.
	Predicate string `json:"predicate"`

	// Object contains the property value or resource reference.
	// For literals: primitive types (float64, bool, string, int).
	// For resource references: IRI strings.
	Object any `json:"object"`

	// Source identifies where this assertion came from.
	// Examples: "ontology_import", "operator_input", "function_registry"
	Source string `json:"source,omitempty"`

	// Timestamp indicates when this assertion was made.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Datatype provides an optional RDF datatype hint for the Object
	// value, e.g. "xsd:float". If omitted, the type is inferred from
	// the Go type of Object.
	Datatype string `json:"datatype,omitempty"`
}

// ObjectIRI returns the object as an IRI string if it looks like one.
func (t Triple) ObjectIRI() (string, bool) {
	s, ok := t.Object.(string)
	if !ok || !IsIRI(s) {
		return "", false
	}
	return s, true
}

// ObjectFloat returns the object as a float64 literal, converting the
// integer types JSON and YAML decoders may produce.
func (t Triple) ObjectFloat() (float64, bool) {
	switch v := t.Object.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ObjectInt returns the object as an int literal.
func (t Triple) ObjectInt() (int, bool) {
	switch v := t.Object.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// IsIRI checks whether a string is usable as a concept or resource IRI.
// The resolver compares IRIs opaquely, so validation is deliberately
// shallow: a non-empty scheme, no whitespace.
func IsIRI(s string) bool {
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return false
	}
	idx := strings.Index(s, ":")
	return idx > 0
}
