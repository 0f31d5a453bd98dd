package form

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Schema declares a form in YAML:
//
//	name: signup
//	fields:
//	  - name: username
//	    label: Username
//	    value: ""
//	    rules:
//	      - kind: required
//	        message: Field is required
//	      - kind: min_length
//	        n: 3
type Schema struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec declares one field.
type FieldSpec struct {
	Name  string     `yaml:"name"`
	Label string     `yaml:"label"`
	Value any        `yaml:"value"`
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec declares one rule. Which parameters apply depends on Kind.
type RuleSpec struct {
	Kind    string   `yaml:"kind"`
	Message string   `yaml:"message"`
	N       int      `yaml:"n"`
	Pattern string   `yaml:"pattern"`
	Values  []string `yaml:"values"`
}

// LoadSchema decodes a schema document. Unknown keys are rejected.
func LoadSchema(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Schema
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSchema)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return &s, nil
}

// Build creates form data with the declared fields in document order.
func (s *Schema) Build() (*Data, error) {
	data := NewData()
	seen := make(map[string]struct{}, len(s.Fields))
	for i, spec := range s.Fields {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, spec.Name)
		}
		seen[spec.Name] = struct{}{}

		var rules []Rule
		if spec.Rules != nil {
			rules = make([]Rule, 0, len(spec.Rules))
		}
		for _, rs := range spec.Rules {
			rule, err := rs.Rule()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", spec.Name, err)
			}
			rules = append(rules, rule)
		}
		data.Set(spec.Name, Field{Value: spec.Value, Rules: rules})
	}
	return data, nil
}

// Label returns the display label of a field, falling back to its name.
func (s *Schema) Label(name string) string {
	for _, f := range s.Fields {
		if f.Name == name && f.Label != "" {
			return f.Label
		}
	}
	return name
}

// Rule builds the rule described by rs.
func (rs RuleSpec) Rule() (Rule, error) {
	switch rs.Kind {
	case "required":
		return Required(rs.Message), nil
	case "min_length":
		return MinLength(rs.N, rs.Message), nil
	case "max_length":
		return MaxLength(rs.N, rs.Message), nil
	case "pattern":
		re, err := regexp.Compile(rs.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", ErrInvalidSchema, rs.Pattern, err)
		}
		return Pattern(re, rs.Message), nil
	case "email":
		return Email(rs.Message), nil
	case "uppercase":
		return HasUppercase(rs.Message), nil
	case "one_of":
		if len(rs.Values) == 0 {
			return nil, fmt.Errorf("%w: one_of needs values", ErrInvalidSchema)
		}
		return OneOf(rs.Values, rs.Message), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, rs.Kind)
	}
}
