package form

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/odvcencio/furrykit/state"
)

var requiredRule = Loose(func(v any) any {
	if s, _ := v.(string); s != "" {
		return true
	}
	return "Field is required"
})

func newData(fields map[string]Field, order ...string) *Data {
	data := NewData()
	for _, name := range order {
		data.Set(name, fields[name])
	}
	return data
}

func TestValidator_RequiredEmpty(t *testing.T) {
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data)

	v.ValidateForm()

	if v.IsFormValid().Get() {
		t.Fatalf("expected form to be invalid")
	}
	got, _ := v.Validity("username")
	if got.IsValid || got.ErrorMessage != "Field is required" {
		t.Fatalf("unexpected validity %+v", got)
	}
}

func TestValidator_RequiredFilled(t *testing.T) {
	data := newData(map[string]Field{
		"username": {Value: "john", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data)

	v.ValidateForm()

	if !v.IsFormValid().Get() {
		t.Fatalf("expected form to be valid")
	}
	got, _ := v.Validity("username")
	if !got.IsValid || got.ErrorMessage != "" {
		t.Fatalf("unexpected validity %+v", got)
	}
}

func TestValidator_MultipleFields(t *testing.T) {
	emailRules := []Rule{
		Required("Email is required"),
		Check(func(v any) bool { return strings.Contains(v.(string), "@") }, "Email must be valid"),
	}

	cases := []struct {
		name      string
		email     string
		wantValid bool
		wantMsg   string
	}{
		{"one invalid", "", false, "Email is required"},
		{"bad email", "john", false, "Email must be valid"},
		{"all valid", "john@example.com", true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := newData(map[string]Field{
				"username": {Value: "john", Rules: []Rule{requiredRule}},
				"email":    {Value: tc.email, Rules: emailRules},
			}, "username", "email")
			v := New(data)
			v.ValidateForm()

			if got := v.IsFormValid().Get(); got != tc.wantValid {
				t.Fatalf("expected form valid=%v, got %v", tc.wantValid, got)
			}
			if u, _ := v.Validity("username"); !u.IsValid {
				t.Fatalf("expected username valid, got %+v", u)
			}
			e, _ := v.Validity("email")
			if e.IsValid != tc.wantValid || e.ErrorMessage != tc.wantMsg {
				t.Fatalf("unexpected email validity %+v", e)
			}
		})
	}
}

func TestValidator_FirstErrorWins(t *testing.T) {
	uppercaseCalls := 0
	lengthRule := Loose(func(v any) any {
		if len(v.(string)) >= 6 {
			return true
		}
		return "Password must be at least 6 characters"
	})
	uppercaseRule := func(v any) Result {
		uppercaseCalls++
		if regexp.MustCompile(`[A-Z]`).MatchString(v.(string)) {
			return Pass()
		}
		return Fail("Password must include an uppercase letter")
	}
	data := newData(map[string]Field{
		"password": {Value: "123", Rules: []Rule{lengthRule, uppercaseRule}},
	}, "password")
	v := New(data)

	if err := v.ValidateField("password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := v.Validity("password")
	if got.IsValid || got.ErrorMessage != "Password must be at least 6 characters" {
		t.Fatalf("unexpected validity %+v", got)
	}
	if uppercaseCalls != 0 {
		t.Fatalf("expected later rules to be skipped, got %d calls", uppercaseCalls)
	}
}

func TestValidator_ValueChangeFlipsFormValid(t *testing.T) {
	otherCalls := 0
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{requiredRule}},
		"nickname": {Value: "j", Rules: []Rule{func(v any) Result {
			otherCalls++
			return Pass()
		}}},
	}, "username", "nickname")
	v := New(data)
	v.subs.Clear()

	if err := v.ValidateField("username"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsFormValid().Get() {
		t.Fatalf("expected form invalid")
	}

	if err := data.SetValue("username", "john"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.ValidateField("username"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsFormValid().Get() {
		t.Fatalf("expected form valid after fixing the field")
	}
	if otherCalls != 0 {
		t.Fatalf("expected untouched field not to be revalidated, got %d calls", otherCalls)
	}
}

func TestValidator_ChangeListenerRevalidates(t *testing.T) {
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data)

	if !v.IsFormValid().Get() {
		t.Fatalf("expected fresh validator to start valid")
	}

	data.SetValue("username", "")
	if v.IsFormValid().Get() {
		t.Fatalf("expected change listener to mark form invalid")
	}
	data.SetValue("username", "john")
	if !v.IsFormValid().Get() {
		t.Fatalf("expected change listener to mark form valid")
	}

	data.Set("email", Field{Value: "", Rules: []Rule{Required("Email is required")}})
	if got, ok := v.Validity("email"); !ok || got.ErrorMessage != "Email is required" {
		t.Fatalf("expected added field to be tracked and validated, got %+v", got)
	}

	data.Remove("email")
	if _, ok := v.Validity("email"); ok {
		t.Fatalf("expected removed field to be dropped")
	}
	if !v.IsFormValid().Get() {
		t.Fatalf("expected removed invalid field not to block the form")
	}
}

func TestValidator_ChangeListenerScheduled(t *testing.T) {
	queue := state.NewQueue()
	data := newData(map[string]Field{
		"username": {Value: "john", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data, WithScheduler(queue))

	data.SetValue("username", "")
	if !v.IsFormValid().Get() {
		t.Fatalf("expected revalidation to wait for flush")
	}
	if flushed := queue.Flush(); flushed != 1 {
		t.Fatalf("expected 1 queued revalidation, got %d", flushed)
	}
	if v.IsFormValid().Get() {
		t.Fatalf("expected form invalid after flush")
	}

	v.Stop()
	data.SetValue("username", "john")
	if queue.Len() != 0 {
		t.Fatalf("expected no revalidation after stop, got %d queued", queue.Len())
	}
}

func TestValidator_ResetValidation(t *testing.T) {
	calls := 0
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{func(v any) Result {
			calls++
			return Fail("nope")
		}}},
		"email": {Value: "", Rules: []Rule{Required("")}},
	}, "username", "email")
	v := New(data)
	v.ValidateForm()
	if !v.Submitted().Get() || v.IsFormValid().Get() {
		t.Fatalf("expected submitted invalid form")
	}
	before := calls

	v.ResetValidation()

	if v.Submitted().Get() {
		t.Fatalf("expected submitted to be cleared")
	}
	if calls != before {
		t.Fatalf("expected reset not to run rules")
	}
	for name, fv := range v.FieldsValidity().Get() {
		if !fv.IsValid || fv.ErrorMessage != "" {
			t.Fatalf("expected %s reset to valid, got %+v", name, fv)
		}
	}
	if !v.IsFormValid().Get() {
		t.Fatalf("expected form valid after reset")
	}
}

func TestValidator_UnknownField(t *testing.T) {
	v := New(NewData())
	err := v.ValidateField("ghost")
	if !errors.Is(err, ErrUnknownField) || !IsUnknownField(err) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, ok := v.Validity("ghost"); ok {
		t.Fatalf("expected unknown field not to be tracked")
	}
}

func TestValidator_NoRulesAlwaysValid(t *testing.T) {
	data := newData(map[string]Field{
		"notes": {Value: nil},
		"tags":  {Value: nil, Rules: []Rule{}},
	}, "notes", "tags")
	v := New(data)
	v.ValidateForm()
	for _, name := range []string{"notes", "tags"} {
		if got, _ := v.Validity(name); !got.IsValid || got.ErrorMessage != "" {
			t.Fatalf("expected %s valid, got %+v", name, got)
		}
	}
}

func TestValidator_NonStringFailureNormalized(t *testing.T) {
	data := newData(map[string]Field{
		"age": {Value: 3, Rules: []Rule{
			Loose(func(v any) any { return 42 }),
		}},
		"flag": {Value: 3, Rules: []Rule{
			Loose(func(v any) any { return false }),
		}},
	}, "age", "flag")
	v := New(data)
	v.ValidateForm()
	for _, name := range []string{"age", "flag"} {
		if got, _ := v.Validity(name); got.IsValid || got.ErrorMessage != "Invalid" {
			t.Fatalf("expected %s to fail with Invalid, got %+v", name, got)
		}
	}
}

func TestValidator_EmptyStringFailureKeptVerbatim(t *testing.T) {
	data := newData(map[string]Field{
		"f": {Value: "x", Rules: []Rule{Loose(func(any) any { return "" })}},
	}, "f")
	v := New(data)

	if err := v.ValidateField("f"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := v.Validity("f")
	if got.IsValid || got.ErrorMessage != "" {
		t.Fatalf("expected invalid with empty message, got %+v", got)
	}
	if v.IsFormValid().Get() {
		t.Fatalf("expected form to be invalid")
	}
}

func TestValidator_PanickingRuleFails(t *testing.T) {
	later := false
	data := newData(map[string]Field{
		"email": {Value: nil, Rules: []Rule{
			func(v any) Result { return Check(func(v any) bool { return strings.Contains(v.(string), "@") }, "x")(v) },
			func(v any) Result { later = true; return Pass() },
		}},
		"other": {Value: 1, Rules: []Rule{func(v any) Result { panic(errors.New("lookup failed")) }}},
	}, "email", "other")
	v := New(data)

	v.ValidateForm()

	email, _ := v.Validity("email")
	if email.IsValid || email.ErrorMessage == "" {
		t.Fatalf("expected panicking rule to fail the field, got %+v", email)
	}
	if later {
		t.Fatalf("expected rules after a panic to be skipped")
	}
	other, _ := v.Validity("other")
	if other.ErrorMessage != "lookup failed" {
		t.Fatalf("expected panic error text, got %+v", other)
	}
}

func TestValidator_SeedsExistingFields(t *testing.T) {
	data := newData(map[string]Field{
		"a": {Value: "", Rules: []Rule{requiredRule}},
		"b": {Value: "", Rules: []Rule{requiredRule}},
	}, "a", "b")
	v := New(data)

	got := v.FieldsValidity().Get()
	if len(got) != 2 || !got["a"].IsValid || !got["b"].IsValid {
		t.Fatalf("expected every field seeded valid, got %+v", got)
	}
}

func TestValidator_NotifiesOnlyOnChange(t *testing.T) {
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data)
	validityCalls, formCalls := 0, 0
	v.FieldsValidity().Subscribe(func() { validityCalls++ })
	v.IsFormValid().Subscribe(func() { formCalls++ })

	v.ValidateField("username")
	v.ValidateField("username")

	if validityCalls != 1 || formCalls != 1 {
		t.Fatalf("expected one notification each, got validity=%d form=%d", validityCalls, formCalls)
	}
}

func TestValidator_ListenerMayReenter(t *testing.T) {
	data := newData(map[string]Field{
		"username": {Value: "", Rules: []Rule{requiredRule}},
	}, "username")
	v := New(data)
	v.IsFormValid().Subscribe(func() {
		if !v.IsFormValid().Get() {
			v.ResetValidation()
		}
	})

	v.ValidateForm()
	if !v.IsFormValid().Get() {
		t.Fatalf("expected listener reset to take effect")
	}
}
