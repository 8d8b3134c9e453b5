package feature

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema describes a dataset. Definition is an optional JSON Schema applied
// to feature properties on write.
type Schema struct {
	Name       string
	Definition string

	compiled *gojsonschema.Schema
}

// NewSchema creates a schema; a non-empty definition is compiled eagerly.
func NewSchema(name, definition string) (*Schema, error) {
	s := &Schema{Name: name, Definition: definition}
	if strings.TrimSpace(definition) == "" {
		return s, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("feature: invalid schema for %s: %w", name, err)
	}
	s.compiled = compiled
	return s, nil
}

// Validate checks the feature's properties against the definition. A schema
// without a definition accepts everything.
func (s *Schema) Validate(f *Feature) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(props))
	if err != nil {
		return &MappingError{ID: f.ID, Err: err}
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return &MappingError{ID: f.ID, Err: fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))}
}
