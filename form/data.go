package form

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/odvcencio/furrykit/state"
)

// Field is a value with the ordered rules that constrain it.
// A nil Rules slice means the field is always valid.
type Field struct {
	Value any
	Rules []Rule
}

// Data is an observable, insertion-ordered set of named fields.
// Subscribers are notified after any value or rules change and after fields
// are added or removed.
type Data struct {
	mu       sync.RWMutex
	fields   map[string]Field
	order    []string
	changes  atomic.Uint64
	revision *state.Signal[uint64]
}

// NewData creates an empty field set.
func NewData() *Data {
	return &Data{
		fields:   make(map[string]Field),
		revision: state.NewSignal[uint64](0),
	}
}

// Set adds or replaces a field.
func (d *Data) Set(name string, field Field) {
	d.mu.Lock()
	if _, ok := d.fields[name]; !ok {
		d.order = append(d.order, name)
	}
	d.fields[name] = Field{Value: field.Value, Rules: cloneRules(field.Rules)}
	d.mu.Unlock()
	d.bump()
}

// SetValue replaces the value of an existing field.
func (d *Data) SetValue(name string, value any) error {
	d.mu.Lock()
	field, ok := d.fields[name]
	if !ok {
		d.mu.Unlock()
		return unknownField(name)
	}
	field.Value = value
	d.fields[name] = field
	d.mu.Unlock()
	d.bump()
	return nil
}

// SetRules replaces the rules of an existing field.
func (d *Data) SetRules(name string, rules []Rule) error {
	d.mu.Lock()
	field, ok := d.fields[name]
	if !ok {
		d.mu.Unlock()
		return unknownField(name)
	}
	field.Rules = cloneRules(rules)
	d.fields[name] = field
	d.mu.Unlock()
	d.bump()
	return nil
}

// Remove deletes a field and reports whether it existed.
func (d *Data) Remove(name string) bool {
	d.mu.Lock()
	if _, ok := d.fields[name]; !ok {
		d.mu.Unlock()
		return false
	}
	delete(d.fields, name)
	d.order = slices.DeleteFunc(d.order, func(k string) bool { return k == name })
	d.mu.Unlock()
	d.bump()
	return true
}

// Get returns a copy of the named field.
func (d *Data) Get(name string) (Field, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	field, ok := d.fields[name]
	if !ok {
		return Field{}, false
	}
	return Field{Value: field.Value, Rules: cloneRules(field.Rules)}, true
}

// Value returns the current value of the named field.
func (d *Data) Value(name string) any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fields[name].Value
}

// Keys returns field names in insertion order.
func (d *Data) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

// Len returns the number of fields.
func (d *Data) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// Revision counts changes made so far.
func (d *Data) Revision() uint64 {
	return d.changes.Load()
}

// Subscribe registers a listener for any change to the field set.
func (d *Data) Subscribe(fn func()) func() {
	return d.revision.Subscribe(fn)
}

// SubscribeWithScheduler registers a change listener dispatched by scheduler.
func (d *Data) SubscribeWithScheduler(scheduler state.Scheduler, fn func()) func() {
	return d.revision.SubscribeWithScheduler(scheduler, fn)
}

func (d *Data) bump() {
	d.revision.Set(d.changes.Add(1))
}

func cloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	return slices.Clone(rules)
}
