// Package form validates named fields against ordered rule chains and keeps
// the per-field outcome, and the form-wide verdict, as observable state.
//
// Rules run in declared order and the first failure wins. A Validator
// listens to its Data and re-validates every field on each change, so
// validity follows the latest values without explicit calls.
package form

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/odvcencio/furrykit/state"
)

// FieldValidity is the outcome of validating one field.
type FieldValidity struct {
	IsValid      bool
	ErrorMessage string
}

var valid = FieldValidity{IsValid: true}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for validation events.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithScheduler dispatches change-triggered re-validation through scheduler
// instead of running it inside the mutating call.
func WithScheduler(scheduler state.Scheduler) Option {
	return func(v *Validator) {
		v.subs.SetScheduler(scheduler)
	}
}

// Validator tracks field validity for a Data set.
type Validator struct {
	data   *Data
	logger zerolog.Logger
	subs   state.Subscriptions

	mu      sync.Mutex
	current map[string]FieldValidity

	validity    *state.Signal[map[string]FieldValidity]
	submitted   *state.Signal[bool]
	isFormValid *state.Computed[bool]
}

// New creates a Validator over data, marks every existing field valid and
// registers the field change listener.
func New(data *Data, opts ...Option) *Validator {
	if data == nil {
		data = NewData()
	}
	v := &Validator{
		data:      data,
		logger:    zerolog.Nop(),
		current:   make(map[string]FieldValidity, data.Len()),
		submitted: state.NewComparableSignal(false),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	v.logger = v.logger.With().Str("component", "form").Logger()

	for _, name := range data.Keys() {
		v.current[name] = valid
	}
	v.validity = state.NewSignal(maps.Clone(v.current))
	v.validity.SetEqualFunc(func(a, b map[string]FieldValidity) bool {
		return maps.Equal(a, b)
	})
	v.isFormValid = state.NewComputedComparable(v.allValid, v.validity)

	v.registerFieldChangeListener()
	return v
}

// Data returns the field set being validated.
func (v *Validator) Data() *Data {
	return v.data
}

// FieldsValidity exposes the per-field outcomes. Published maps are never
// mutated; treat them as read-only.
func (v *Validator) FieldsValidity() state.Readable[map[string]FieldValidity] {
	return v.validity
}

// IsFormValid is true when every tracked field is valid.
func (v *Validator) IsFormValid() state.Readable[bool] {
	return v.isFormValid
}

// Submitted is true between ValidateForm and ResetValidation.
func (v *Validator) Submitted() state.Readable[bool] {
	return v.submitted
}

// Validity returns the tracked outcome for name.
func (v *Validator) Validity(name string) (FieldValidity, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fv, ok := v.current[name]
	return fv, ok
}

// ValidateField runs the rules of one field.
// It returns ErrUnknownField when name is not part of the data.
func (v *Validator) ValidateField(name string) error {
	if err := v.validate(name); err != nil {
		return err
	}
	v.publish()
	return nil
}

// ValidateForm marks the form submitted and validates every field.
func (v *Validator) ValidateForm() {
	v.submitted.Set(true)
	keys := v.data.Keys()
	for _, name := range keys {
		// Fields removed since Keys was read are skipped.
		_ = v.validate(name)
	}
	v.publish()
	if !v.isFormValid.Get() {
		v.logger.Debug().Int("fields", len(keys)).Msg("form submitted with invalid fields")
	}
}

// ResetValidation clears submitted and marks every tracked field valid
// without running rules.
func (v *Validator) ResetValidation() {
	v.submitted.Set(false)
	v.mu.Lock()
	for name := range v.current {
		v.current[name] = valid
	}
	v.mu.Unlock()
	v.publish()
}

// Stop detaches the validator from its data.
func (v *Validator) Stop() {
	v.subs.Clear()
	v.isFormValid.Stop()
}

// registerFieldChangeListener re-validates every field whenever data changes.
func (v *Validator) registerFieldChangeListener() {
	v.subs.Observe(v.data, v.revalidate)
}

func (v *Validator) revalidate() {
	keys := v.data.Keys()
	for _, name := range keys {
		_ = v.validate(name)
	}
	v.prune(keys)
	v.publish()
}

// prune drops outcomes for fields that were removed from the data.
func (v *Validator) prune(keys []string) {
	live := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		live[k] = struct{}{}
	}
	v.mu.Lock()
	maps.DeleteFunc(v.current, func(name string, _ FieldValidity) bool {
		_, ok := live[name]
		return !ok
	})
	v.mu.Unlock()
}

func (v *Validator) validate(name string) error {
	field, ok := v.data.Get(name)
	if !ok {
		return unknownField(name)
	}
	outcome := v.evaluate(name, field)
	v.mu.Lock()
	v.current[name] = outcome
	v.mu.Unlock()
	return nil
}

// evaluate runs rules in order and stops at the first failure.
func (v *Validator) evaluate(name string, field Field) FieldValidity {
	if field.Rules == nil {
		return valid
	}
	for i, rule := range field.Rules {
		if rule == nil {
			continue
		}
		res := v.run(name, i, rule, field.Value)
		if !res.OK() {
			return FieldValidity{IsValid: false, ErrorMessage: res.Message()}
		}
	}
	return valid
}

// run invokes a rule, turning a panic into that rule's failure.
func (v *Validator) run(name string, index int, rule Rule, value any) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			v.logger.Warn().Str("field", name).Int("rule", index).Interface("panic", p).Msg("rule panicked")
			res = Fail(panicMessage(p))
		}
	}()
	return rule(value)
}

func panicMessage(p any) string {
	switch e := p.(type) {
	case error:
		return e.Error()
	case string:
		return e
	case fmt.Stringer:
		return e.String()
	default:
		return ""
	}
}

// publish pushes the latest outcomes to subscribers. It never holds the lock
// while notifying, so listeners may call back into the Validator.
func (v *Validator) publish() {
	v.mu.Lock()
	snapshot := maps.Clone(v.current)
	v.mu.Unlock()
	v.validity.Set(snapshot)
}

func (v *Validator) allValid() bool {
	for _, fv := range v.validity.Get() {
		if !fv.IsValid {
			return false
		}
	}
	return true
}

// IsUnknownField reports whether err came from validating a missing field.
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}
