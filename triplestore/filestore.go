package triplestore

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
)

// knowledgeFile is the YAML schema of a knowledge document.
type knowledgeFile struct {
	Equivalences []struct {
		Source string   `yaml:"source"`
		Target string   `yaml:"target"`
		Cost   *float64 `yaml:"cost"`
	} `yaml:"equivalences"`
	Transformations []struct {
		ID      string   `yaml:"id"`
		Inputs  []string `yaml:"inputs"`
		Outputs []string `yaml:"outputs"`
		Cost    *float64 `yaml:"cost"`
	} `yaml:"transformations"`
}

// FileStore is a Source reading facts from a YAML knowledge document.
// The file is parsed once at construction; missing cost fields fall
// back to the store defaults.
type FileStore struct {
	equivalences    []mapping.EquivalenceRelation
	transformations []mapping.TransformationDescriptor
}

// NewFileStore parses a YAML knowledge document into a fact source.
func NewFileStore(path string, opts ...MemStoreOption) (*FileStore, error) {
	defaults := NewMemStore(opts...)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "FileStore", "New", "read knowledge file")
	}

	var doc knowledgeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrMalformedFact, err),
			"FileStore", "New", "parse knowledge file")
	}

	s := &FileStore{}
	for _, e := range doc.Equivalences {
		cost := defaults.equivalenceCost
		if e.Cost != nil {
			cost = *e.Cost
		}
		s.equivalences = append(s.equivalences, mapping.EquivalenceRelation{
			Source: mapping.Concept(e.Source),
			Target: mapping.Concept(e.Target),
			Cost:   cost,
		})
	}
	for _, tr := range doc.Transformations {
		cost := defaults.transformationCost
		if tr.Cost != nil {
			cost = *tr.Cost
		}
		desc := mapping.TransformationDescriptor{ID: tr.ID, Cost: cost}
		for _, in := range tr.Inputs {
			desc.Inputs = append(desc.Inputs, mapping.Concept(in))
		}
		for _, out := range tr.Outputs {
			desc.Outputs = append(desc.Outputs, mapping.Concept(out))
		}
		s.transformations = append(s.transformations, desc)
	}
	return s, nil
}

// EquivalenceRelations returns the parsed equivalence facts.
func (s *FileStore) EquivalenceRelations(_ context.Context) ([]mapping.EquivalenceRelation, error) {
	return s.equivalences, nil
}

// Transformations returns the parsed transformation descriptors.
func (s *FileStore) Transformations(_ context.Context) ([]mapping.TransformationDescriptor, error) {
	return s.transformations, nil
}
