package form

import (
	"errors"
	"strings"
	"testing"
)

const signupSchema = `
name: signup
fields:
  - name: username
    label: Username
    value: ""
    rules:
      - kind: required
        message: Field is required
      - kind: min_length
        n: 3
  - name: password
    value: "123"
    rules:
      - kind: min_length
        n: 6
        message: Password must be at least 6 characters
      - kind: uppercase
        message: Password must include an uppercase letter
  - name: plan
    value: free
    rules:
      - kind: one_of
        values: [free, pro]
  - name: notes
`

func TestSchema_BuildAndValidate(t *testing.T) {
	schema, err := LoadSchema(strings.NewReader(signupSchema))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := schema.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(data.Keys(), ","); got != "username,password,plan,notes" {
		t.Fatalf("unexpected field order %q", got)
	}
	if schema.Label("username") != "Username" || schema.Label("notes") != "notes" {
		t.Fatalf("unexpected labels")
	}

	v := New(data)
	v.ValidateForm()

	want := map[string]FieldValidity{
		"username": {IsValid: false, ErrorMessage: "Field is required"},
		"password": {IsValid: false, ErrorMessage: "Password must be at least 6 characters"},
		"plan":     {IsValid: true},
		"notes":    {IsValid: true},
	}
	for name, fv := range want {
		if got, _ := v.Validity(name); got != fv {
			t.Fatalf("field %s: expected %+v, got %+v", name, fv, got)
		}
	}

	data.SetValue("username", "john")
	data.SetValue("password", "Secret1")
	if !v.IsFormValid().Get() {
		t.Fatalf("expected form valid after edits, got %+v", v.FieldsValidity().Get())
	}
}

func TestSchema_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"empty", ``, ErrInvalidSchema},
		{"unknown key", "fields:\n  - name: a\n    colour: red\n", ErrInvalidSchema},
		{"missing name", "fields:\n  - value: x\n", ErrInvalidSchema},
		{"duplicate", "fields:\n  - name: a\n  - name: a\n", ErrInvalidSchema},
		{"unknown rule", "fields:\n  - name: a\n    rules:\n      - kind: shiny\n", ErrUnknownRule},
		{"bad pattern", "fields:\n  - name: a\n    rules:\n      - kind: pattern\n        pattern: '('\n", ErrInvalidSchema},
		{"one_of without values", "fields:\n  - name: a\n    rules:\n      - kind: one_of\n", ErrInvalidSchema},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema, err := LoadSchema(strings.NewReader(tc.doc))
			if err == nil {
				_, err = schema.Build()
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
