package adapter

import (
	"fmt"
	"reflect"

	"github.com/polyfrost/go-oneconfig/value"
)

// Adapter converts values of exactly one Go type to and from the
// universal value tree.
type Adapter interface {
	// Type is the exact type handled by the adapter.
	Type() reflect.Type
	// Serialize converts v, which has dynamic type Type(), to a value.
	Serialize(v any) (*value.Value, error)
	// Deserialize converts a value produced by Serialize back.
	Deserialize(v *value.Value) (any, error)
}

type funcAdapter[T any] struct {
	typ reflect.Type
	ser func(T) (*value.Value, error)
	de  func(*value.Value) (T, error)
}

// Func returns an Adapter for T built from a pair of conversion functions.
func Func[T any](ser func(T) (*value.Value, error), de func(*value.Value) (T, error)) Adapter {
	return &funcAdapter[T]{
		typ: reflect.TypeFor[T](),
		ser: ser,
		de:  de,
	}
}

func (a *funcAdapter[T]) Type() reflect.Type { return a.typ }

func (a *funcAdapter[T]) Serialize(v any) (*value.Value, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("adapter for %s given %T", a.typ, v)
	}
	return a.ser(t)
}

func (a *funcAdapter[T]) Deserialize(v *value.Value) (any, error) {
	t, err := a.de(v)
	if err != nil {
		return nil, err
	}
	return t, nil
}
