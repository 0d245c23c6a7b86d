package config

import (
	"fmt"
	"reflect"
	"sync"
)

// AnyProperty is implemented by every *Property[T], letting trees hold
// properties of different value types.
type AnyProperty interface {
	Node
	// Value returns the current value boxed in an interface.
	Value() any
	// SetAny sets the value after checking its type.
	SetAny(v any) error
	// Type is the type of the value: T, or the dynamic type of the
	// current value when T is an interface type.
	Type() reflect.Type
	IsArray() bool
	IsPrimitive() bool
	CanDisplay() bool
	Revaluate()
	// Clone returns a property with the same id, value and metadata and
	// no callbacks or display conditions. The value itself is not copied.
	Clone() AnyProperty
}

// Subscription is a registered callback or display condition.
type Subscription struct {
	id     uint64
	cancel func(uint64)
}

// Unsubscribe removes the callback or condition. It may be called more
// than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.cancel != nil {
		s.cancel(s.id)
	}
}

type entry[F any] struct {
	id uint64
	f  F
}

// Property is a leaf node holding one value of type T.
//
// Set fires change callbacks unless the new value is identical to the
// current one. Identity, not equality, decides: pointers, maps, slices,
// channels and funcs are identical when they share their underlying
// reference; other comparable values when they are ==; struct values that
// are not comparable are never identical.
//
// Callback and condition lists are replaced rather than mutated, so
// adding or removing them from within a callback is safe.
type Property[T any] struct {
	id   string
	meta Meta
	typ  reflect.Type

	mu         sync.Mutex
	val        T
	nextID     uint64
	callbacks  []entry[func(T)]
	conditions []entry[func() bool]
	canDisplay bool
}

func NewProperty[T any](id string, v T) *Property[T] {
	return &Property[T]{
		id:         id,
		typ:        reflect.TypeFor[T](),
		val:        v,
		canDisplay: true,
	}
}

func (p *Property[T]) Clone() AnyProperty {
	c := NewProperty(p.id, p.Get())
	c.meta.CopyFrom(&p.meta)
	return c
}

func (p *Property[T]) ID() string  { return p.id }
func (p *Property[T]) Meta() *Meta { return &p.meta }

func (p *Property[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.val
}

func (p *Property[T]) Value() any { return p.Get() }

// Set replaces the value and fires the change callbacks in registration
// order. Setting an identical value does nothing.
func (p *Property[T]) Set(v T) {
	p.mu.Lock()
	if identical(p.val, v) {
		p.mu.Unlock()
		return
	}
	p.val = v
	callbacks := p.callbacks
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb.f(v)
	}
}

func (p *Property[T]) SetAny(v any) error {
	if v == nil {
		var zero T
		if !nillable(p.typ) {
			return fmt.Errorf("%w: property %q of type %s cannot be nil", ErrTypeMismatch, p.id, p.typ)
		}
		p.Set(zero)
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: property %q of type %s given %T", ErrTypeMismatch, p.id, p.typ, v)
	}
	p.Set(t)
	return nil
}

func (p *Property[T]) Type() reflect.Type {
	if p.typ.Kind() == reflect.Interface {
		if v := p.Value(); v != nil {
			return reflect.TypeOf(v)
		}
	}
	return p.typ
}

// IsArray reports whether the value is a slice or array.
func (p *Property[T]) IsArray() bool {
	switch p.Type().Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// IsPrimitive reports whether the value is a bool, number or string.
func (p *Property[T]) IsPrimitive() bool {
	switch p.Type().Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// AddCallback registers f to be called with the new value after each
// change.
func (p *Property[T]) AddCallback(f func(T)) *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.callbacks = append(p.callbacks[:len(p.callbacks):len(p.callbacks)], entry[func(T)]{id: id, f: f})
	return &Subscription{id: id, cancel: p.removeCallback}
}

func (p *Property[T]) removeCallback(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = without(p.callbacks, id)
}

func (p *Property[T]) ClearCallbacks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = nil
}

// AddDisplayCondition registers a predicate gating CanDisplay.
func (p *Property[T]) AddDisplayCondition(f func() bool) *Subscription {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.conditions = append(p.conditions[:len(p.conditions):len(p.conditions)], entry[func() bool]{id: id, f: f})
	p.mu.Unlock()
	p.Revaluate()
	return &Subscription{id: id, cancel: p.removeCondition}
}

func (p *Property[T]) removeCondition(id uint64) {
	p.mu.Lock()
	p.conditions = without(p.conditions, id)
	p.mu.Unlock()
	p.Revaluate()
}

func (p *Property[T]) ClearDisplayConditions() {
	p.mu.Lock()
	p.conditions = nil
	p.canDisplay = true
	p.mu.Unlock()
}

// CanDisplay returns the cached conjunction of the display conditions.
// It is recomputed when conditions change and by Revaluate.
func (p *Property[T]) CanDisplay() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canDisplay
}

// Revaluate recomputes CanDisplay, for use when the state read by the
// conditions has changed.
func (p *Property[T]) Revaluate() {
	p.mu.Lock()
	conditions := p.conditions
	p.mu.Unlock()

	ok := true
	for _, c := range conditions {
		if !c.f() {
			ok = false
			break
		}
	}
	p.mu.Lock()
	p.canDisplay = ok
	p.mu.Unlock()
}

func (p *Property[T]) String() string {
	return fmt.Sprintf("%s = %v", p.id, p.Value())
}

func without[F any](es []entry[F], id uint64) []entry[F] {
	res := make([]entry[F], 0, len(es))
	for _, e := range es {
		if e.id != id {
			res = append(res, e)
		}
	}
	return res
}

func identical[T any](a, b T) bool {
	return sameRef(reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

func sameRef(a, b reflect.Value) bool {
	if a.Kind() == reflect.Interface {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		a, b = a.Elem(), b.Elem()
		if a.Type() != b.Type() {
			return false
		}
	}
	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len() && a.IsNil() == b.IsNil()
	}
	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}
	return false
}

func nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
