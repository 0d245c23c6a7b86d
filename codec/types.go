package codec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const (
	// ClassKey tags a map with the type name it decodes to.
	ClassKey = "class"
	// ClassTypeKey is accepted on decode as an alias of ClassKey.
	ClassTypeKey = "classType"
	// ValueKey holds the payload of scalar, enum and adapter encodings.
	ValueKey = "value"

	arraySuffix = "[]"
	anyClass    = "any"
)

func isReservedKey(k string) bool {
	return k == ClassKey || k == ClassTypeKey || k == ValueKey
}

// Types maps class names to Go types.
//
// Go cannot look a type up by name at run time, so every named type that
// is decoded from a class tag without a declared destination type must be
// registered. Predeclared types ("int", "string", ...) resolve without
// registration.
type Types struct {
	mu     sync.RWMutex
	byName map[string]*typeInfo
	byType map[reflect.Type]*typeInfo
}

type typeInfo struct {
	typ     reflect.Type
	name    string
	factory func() any

	// enum constants by name, nil for non-enum types
	enum map[string]reflect.Value
}

// TypeOption configures a registered type.
type TypeOption func(*typeInfo)

// Factory sets the function used to instantiate the type before its
// fields are decoded. It must return a value of the registered type or a
// pointer to one. Without a factory the zero value is used.
func Factory(f func() any) TypeOption {
	return func(ti *typeInfo) { ti.factory = f }
}

// Named overrides the class name recorded for the type.
func Named(name string) TypeOption {
	return func(ti *typeInfo) { ti.name = name }
}

func NewTypes() *Types {
	return &Types{
		byName: make(map[string]*typeInfo),
		byType: make(map[reflect.Type]*typeInfo),
	}
}

// Register makes T resolvable by its class name.
func Register[T any](ts *Types, opts ...TypeOption) error {
	ti := &typeInfo{typ: reflect.TypeFor[T]()}
	ti.name = TypeName(ti.typ)
	for _, opt := range opts {
		opt(ti)
	}
	return ts.add(ti)
}

// RegisterEnum registers T as an enum whose constants are named by their
// String method. Enum values are encoded as {class, value: name} and
// decoded by name.
func RegisterEnum[T fmt.Stringer](ts *Types, constants ...T) error {
	ti := &typeInfo{
		typ:  reflect.TypeFor[T](),
		enum: make(map[string]reflect.Value, len(constants)),
	}
	ti.name = TypeName(ti.typ)
	for _, c := range constants {
		name := c.String()
		if _, dup := ti.enum[name]; dup {
			return fmt.Errorf("enum %s: duplicate constant name %q", ti.name, name)
		}
		ti.enum[name] = reflect.ValueOf(c)
	}
	return ts.add(ti)
}

func (ts *Types) add(ti *typeInfo) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if prev, exists := ts.byName[ti.name]; exists && prev.typ != ti.typ {
		return fmt.Errorf("class name %q already registered for %s", ti.name, prev.typ)
	}
	if prev, exists := ts.byType[ti.typ]; exists {
		delete(ts.byName, prev.name)
	}
	ts.byName[ti.name] = ti
	ts.byType[ti.typ] = ti
	return nil
}

// Resolve returns the type registered under name. Array descriptor names
// ("T[]") resolve to a slice of the element type.
func (ts *Types) Resolve(name string) (reflect.Type, bool) {
	if elem, ok := strings.CutSuffix(name, arraySuffix); ok {
		et, ok := ts.Resolve(elem)
		if !ok {
			return nil, false
		}
		return reflect.SliceOf(et), true
	}
	if t, ok := predeclared[name]; ok {
		return t, true
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	ti, ok := ts.byName[name]
	if !ok {
		return nil, false
	}
	return ti.typ, true
}

// NameOf returns the class name for typ, honouring Named registrations.
func (ts *Types) NameOf(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if ti := ts.info(typ); ti != nil {
		return ti.name
	}
	return TypeName(typ)
}

func (ts *Types) info(typ reflect.Type) *typeInfo {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.byType[typ]
}

func (ts *Types) IsEnum(typ reflect.Type) bool {
	ti := ts.info(typ)
	return ti != nil && ti.enum != nil
}

// Instantiate returns a settable value of typ, built by its factory when
// one is registered.
func (ts *Types) Instantiate(typ reflect.Type) (reflect.Value, error) {
	res := reflect.New(typ).Elem()
	ti := ts.info(typ)
	if ti == nil || ti.factory == nil {
		return res, nil
	}
	out := ti.factory()
	made := reflect.ValueOf(out)
	switch {
	case made.IsValid() && made.Type() == typ:
		res.Set(made)
	case made.IsValid() && made.Type() == reflect.PointerTo(typ) && !made.IsNil():
		res.Set(made.Elem())
	default:
		return res, fmt.Errorf("factory for %s returned %T", ti.name, out)
	}
	return res, nil
}

// EnumConstant returns the constant of enum typ named name.
func (ts *Types) EnumConstant(typ reflect.Type, name string) (reflect.Value, bool) {
	ti := ts.info(typ)
	if ti == nil || ti.enum == nil {
		return reflect.Value{}, false
	}
	c, ok := ti.enum[name]
	return c, ok
}

var predeclared = map[string]reflect.Type{}

func init() {
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[int16](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[uint](),
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
	} {
		predeclared[t.Name()] = t
	}
}

// TypeName returns the fully qualified name of typ: "pkgpath.Name" for
// named types, the bare name for predeclared types and "Elem[]" for
// unnamed slices and arrays.
func TypeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Name() != "" {
		if typ.PkgPath() == "" {
			return typ.Name()
		}
		return typ.PkgPath() + "." + typ.Name()
	}
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeName(typ.Elem()) + arraySuffix
	}
	return typ.String()
}

// isSimple reports whether typ is a predeclared bool, numeric or string
// type. Named types are never simple.
func isSimple(typ reflect.Type) bool {
	if typ.PkgPath() != "" || typ.Name() == "" {
		return false
	}
	_, ok := predeclared[typ.Name()]
	return ok
}
