// Package schema holds the JSON-Schema shape contracts for upstream payloads
// and canonical records. Upstream schemas are permissive; canonical ones reject
// unknown fields.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/straye-as/earsip/internal/domain"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled shape contract
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile compiles a JSON schema document
func Compile(name, source string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

func mustCompile(name, source string) *Schema {
	s, err := Compile(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the contract name used in validation errors
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a raw JSON document against the schema
func (s *Schema) Validate(data []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &domain.ValidationError{
			Schema:   s.name,
			Expected: "JSON document",
			Issues:   []domain.ValidationIssue{{Message: err.Error()}},
		}
	}
	if result.Valid() {
		return nil
	}
	return s.toValidationError(result.Errors())
}

// ValidateValue marshals v and checks it against the schema
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.name, err)
	}
	return s.Validate(data)
}

func (s *Schema) toValidationError(errs []gojsonschema.ResultError) *domain.ValidationError {
	ve := &domain.ValidationError{Schema: s.name}
	for i, re := range errs {
		path := issuePath(re)
		if i == 0 {
			ve.Path = path
			ve.Expected = expected(re)
		}
		ve.Issues = append(ve.Issues, domain.ValidationIssue{Path: path, Message: re.Description()})
	}
	return ve
}

func issuePath(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == "(root)" {
		field = ""
	}
	switch re.Type() {
	case "required", "additional_property_not_allowed":
		if property, ok := re.Details()["property"].(string); ok && property != "" {
			switch {
			case field == "":
				return property
			case field == property || strings.HasSuffix(field, "."+property):
				return field
			}
			return field + "." + property
		}
	}
	return field
}

func expected(re gojsonschema.ResultError) string {
	switch re.Type() {
	case "invalid_type":
		if exp, ok := re.Details()["expected"].(string); ok {
			return strings.ToLower(exp)
		}
	case "required":
		return "present"
	case "additional_property_not_allowed":
		return "absent"
	case "string_gte":
		return "non-empty string"
	case "pattern":
		return "ISO-8601 date"
	}
	return re.Type()
}
