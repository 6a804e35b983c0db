package triple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectIRI(t *testing.T) {
	tests := []struct {
		name     string
		object   any
		expected string
		ok       bool
	}{
		{"http IRI", "http://onto.example/Temperature", "http://onto.example/Temperature", true},
		{"urn IRI", "urn:concept:temperature", "urn:concept:temperature", true},
		{"plain string literal", "temperature", "", false},
		{"string with spaces", "http://onto.example/a b", "", false},
		{"float literal", 3.5, "", false},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Triple{Object: tt.object}.ObjectIRI()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestObjectFloat(t *testing.T) {
	tests := []struct {
		name     string
		object   any
		expected float64
		ok       bool
	}{
		{"float64", 2.5, 2.5, true},
		{"float32", float32(1.5), 1.5, true},
		{"int from YAML decode", 3, 3.0, true},
		{"int64", int64(4), 4.0, true},
		{"string", "2.5", 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Triple{Object: tt.object}.ObjectFloat()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestObjectInt(t *testing.T) {
	got, ok := Triple{Object: 7}.ObjectInt()
	assert.True(t, ok)
	assert.Equal(t, 7, got)

	got, ok = Triple{Object: float64(2)}.ObjectInt()
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	_, ok = Triple{Object: 2.5}.ObjectInt()
	assert.False(t, ok)

	_, ok = Triple{Object: "2"}.ObjectInt()
	assert.False(t, ok)
}

func TestIsIRI(t *testing.T) {
	assert.True(t, IsIRI("http://onto.example/Temperature"))
	assert.True(t, IsIRI("urn:x:y"))
	assert.False(t, IsIRI(""))
	assert.False(t, IsIRI("no-scheme"))
	assert.False(t, IsIRI(":leading-colon"))
	assert.False(t, IsIRI("http://a.example/with space"))
}
