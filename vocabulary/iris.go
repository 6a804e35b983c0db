package vocabulary

import (
	"fmt"
	"regexp"
	"strings"
)

// ConceptIRI builds a concept IRI from a dotted domain type.
//
// Input format: "domain.type" (e.g., "sensor.temperature")
// Output format: "https://w3id.org/emmc/mappings/domain#Type"
//
// This is a convenience for callers that manage concepts in dotted
// notation; the resolver itself treats IRIs as opaque.
//
// Returns empty string for invalid input formats.
func ConceptIRI(dottedType string) string {
	dottedType = strings.TrimSpace(dottedType)
	if dottedType == "" {
		return ""
	}

	// Split on dot - expect exactly 2 parts (domain.type)
	parts := strings.Split(dottedType, ".")
	if len(parts) != 2 {
		return ""
	}

	domain := strings.TrimSpace(parts[0])
	conceptType := strings.TrimSpace(parts[1])

	if domain == "" || conceptType == "" {
		return ""
	}

	// Capitalize first letter of type for IRI fragment (convention)
	conceptType = strings.ToUpper(conceptType[:1]) + conceptType[1:]

	return fmt.Sprintf("%s/%s#%s", MappingsBase, domain, conceptType)
}

// FunctionIRI builds a function descriptor IRI from a registry name.
// Handles various naming conventions and converts them to kebab-case.
//
// Examples:
//   - "CELSIUS_TO_KELVIN" -> "https://w3id.org/emmc/mappings/functions#celsius-to-kelvin"
//   - "CelsiusToKelvin"   -> "https://w3id.org/emmc/mappings/functions#celsius-to-kelvin"
//
// Returns empty string for empty input.
func FunctionIRI(name string) string {
	kebab := toKebabCase(name)
	if kebab == "" {
		return ""
	}
	return fmt.Sprintf("%s/functions#%s", MappingsBase, kebab)
}

// Fragment returns the local name of an IRI: the part after the last
// '#' or, when there is no '#', the last '/'. Returns the input
// unchanged when neither separator is present or the separator is the
// final character.
func Fragment(iri string) string {
	if idx := strings.LastIndex(iri, "#"); idx >= 0 {
		if idx < len(iri)-1 {
			return iri[idx+1:]
		}
		return iri
	}
	if idx := strings.LastIndex(iri, "/"); idx >= 0 && idx < len(iri)-1 {
		return iri[idx+1:]
	}
	return iri
}

// toKebabCase converts various naming conventions to kebab-case.
// Handles:
// - SCREAMING_SNAKE_CASE -> kebab-case
// - PascalCase -> kebab-case
// - camelCase -> kebab-case
// - Already kebab-case -> unchanged
func toKebabCase(input string) string {
	if input == "" {
		return ""
	}

	// Handle SCREAMING_SNAKE_CASE
	if strings.Contains(input, "_") {
		parts := strings.Split(input, "_")
		var result []string
		for _, part := range parts {
			if part != "" {
				result = append(result, strings.ToLower(part))
			}
		}
		return strings.Join(result, "-")
	}

	// Handle PascalCase and camelCase
	re := regexp.MustCompile(`([a-z])([A-Z])`)
	kebab := re.ReplaceAllString(input, "${1}-${2}")

	return strings.ToLower(kebab)
}
