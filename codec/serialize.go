package codec

import (
	"encoding"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/polyfrost/go-oneconfig/adapter"
	"github.com/polyfrost/go-oneconfig/debug"
	"github.com/polyfrost/go-oneconfig/value"
)

// Codec converts Go values to and from the universal value tree.
//
// A Codec holds no mutable state of its own; it is safe for concurrent
// use as long as its adapter registry and type table are.
type Codec struct {
	adapters *adapter.Registry
	types    *Types
	maxDepth int
	log      *slog.Logger
}

// New returns a Codec consulting adapters and resolving class names with
// types. Either may be nil.
func New(adapters *adapter.Registry, types *Types, opts ...Option) *Codec {
	if adapters == nil {
		adapters = adapter.NewRegistry()
	}
	if types == nil {
		types = NewTypes()
	}
	c := &Codec{
		adapters: adapters,
		types:    types,
		maxDepth: DefaultMaxDepth,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Adapters() *adapter.Registry { return c.adapters }

func (c *Codec) Types() *Types { return c.types }

// visitKey identifies a reference under serialization. The type is part
// of the key because a struct and its first field share an address.
type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

type encState struct {
	*Codec
	visited map[visitKey]string
}

// Serialize converts v to a value.
//
// Values are classified in order: nil, simple (predeclared bool, number
// or string), adapter-backed, enum, slice or array, map, struct, and
// named scalar. Structs and named scalars are tagged with their class
// name so that Deserialize can reconstruct them.
//
// v itself, like any value held in an interface, has no declared type to
// decode against, so maps, pointers and lists of those are tagged too:
// with a composite class such as "map[string]int" or "[]*pkg.T", or, for
// a pointer to a tagged value, with "*" prefixed to its class.
func (c *Codec) Serialize(v any) (*value.Value, error) {
	es := &encState{Codec: c, visited: make(map[visitKey]string)}
	return es.encodeDynamic(reflect.ValueOf(v), "", 0)
}

func (es *encState) encode(val reflect.Value, path string, depth int) (*value.Value, error) {
	if depth > es.maxDepth {
		return nil, serializeErr(path, ErrMaxDepth, "limit %d", es.maxDepth)
	}
	if !val.IsValid() {
		return value.Null(), nil
	}
	switch val.Kind() {
	case reflect.Interface:
		if val.IsNil() {
			return value.Null(), nil
		}
		return es.encodeDynamic(val.Elem(), path, depth+1)
	case reflect.Pointer:
		if val.IsNil() {
			return value.Null(), nil
		}
		if a, ok := es.adapters.Lookup(val.Type()); ok {
			return es.encodeAdapter(a, val, path)
		}
		leave, err := es.enter(val, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		elem := val.Elem()
		if elem.Kind() == reflect.Struct {
			if a, ok := es.adapters.Lookup(elem.Type()); ok {
				return es.encodeAdapter(a, elem, path)
			}
			return es.encodeStruct(elem, val, path, depth+1)
		}
		return es.encode(elem, path, depth+1)
	}

	typ := val.Type()
	if isSimple(typ) {
		return scalar(val), nil
	}
	if a, ok := es.adapters.Lookup(typ); ok {
		return es.encodeAdapter(a, val, path)
	}
	if es.types.IsEnum(typ) {
		return es.encodeEnum(val, path)
	}

	switch typ.Kind() {
	case reflect.Slice:
		if val.IsNil() {
			return value.Null(), nil
		}
		leave, err := es.enter(val, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return es.encodeList(val, path, depth)
	case reflect.Array:
		return es.encodeList(val, path, depth)
	case reflect.Map:
		if val.IsNil() {
			return value.Null(), nil
		}
		leave, err := es.enter(val, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return es.encodeMap(val, path, depth)
	case reflect.Struct:
		return es.encodeStruct(val, reflect.Value{}, path, depth)
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		res := es.tagged(typ)
		res.Set(ValueKey, scalar(val))
		return res, nil
	}
	return nil, serializeErr(path, ErrUnsupported, "%s", typ)
}

// encodeDynamic encodes val and tags the result with val's full type
// when the plain encoding would lose it.
func (es *encState) encodeDynamic(val reflect.Value, path string, depth int) (*value.Value, error) {
	res, err := es.encode(val, path, depth)
	if err != nil || res.IsNull() {
		return res, err
	}
	typ := val.Type()
	if !hidesType(typ) {
		return res, nil
	}
	if typ.Kind() == reflect.Pointer {
		if n, ok := es.classLevels(typ); ok {
			if cls := res.Get(ClassKey); n > 0 && cls != nil {
				res.Set(ClassKey, value.FromString(strings.Repeat("*", n)+cls.String))
			}
			return res, nil
		}
	} else if _, ok := es.adapters.Lookup(typ); ok || es.types.IsEnum(typ) {
		return res, nil
	}
	name := es.dynName(typ)
	if debug.Codec() {
		debug.Logf("tagging %s at %q\n", name, path)
	}
	wrapped := value.NewMap()
	wrapped.Set(ClassKey, value.FromString(name))
	wrapped.Set(ValueKey, res)
	return wrapped, nil
}

// hidesType reports whether the plain encoding of typ decodes, without a
// declared type, to something else: maps come back untagged and pointers
// as their targets.
func hidesType(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Map, reflect.Pointer:
		return true
	case reflect.Slice, reflect.Array:
		return hidesType(typ.Elem())
	}
	return false
}

// classLevels reports whether the pointer type typ encodes with its own
// class tag, and how many pointers sit above the type that class names.
func (es *encState) classLevels(typ reflect.Type) (int, bool) {
	n := 0
	for {
		if _, ok := es.adapters.Lookup(typ); ok {
			return n, true
		}
		if typ.Kind() != reflect.Pointer {
			break
		}
		typ = typ.Elem()
		n++
	}
	if es.types.IsEnum(typ) {
		return n, true
	}
	switch typ.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return n, false
	}
	return n, !isSimple(typ)
}

// dynName names typ so that Codec.resolve can rebuild it. Named types
// keep their class name unless it cannot be resolved and typ is
// composite, in which case its structure is spelled out.
func (es *encState) dynName(typ reflect.Type) string {
	if typ.Name() != "" {
		name := es.types.NameOf(typ)
		if _, ok := es.resolve(name); ok {
			return name
		}
		switch typ.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array:
		default:
			return name
		}
	}
	switch typ.Kind() {
	case reflect.Pointer:
		return "*" + es.dynName(typ.Elem())
	case reflect.Slice:
		return "[]" + es.dynName(typ.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(typ.Len()) + "]" + es.dynName(typ.Elem())
	case reflect.Map:
		return "map[" + es.dynName(typ.Key()) + "]" + es.dynName(typ.Elem())
	case reflect.Interface:
		if typ.NumMethod() == 0 {
			return anyClass
		}
	}
	return es.types.NameOf(typ)
}

// enter records a reference as under serialization. Revisiting it before
// the returned func is called is a cycle.
func (es *encState) enter(val reflect.Value, path string) (func(), error) {
	key := visitKey{ptr: val.Pointer(), typ: val.Type()}
	if prev, seen := es.visited[key]; seen {
		if prev == "" {
			prev = "<root>"
		}
		return nil, serializeErr(path, ErrCyclicReference, "%s already under serialization at %s", val.Type(), prev)
	}
	es.visited[key] = path
	return func() { delete(es.visited, key) }, nil
}

func (es *encState) tagged(typ reflect.Type) *value.Value {
	res := value.NewMap()
	res.Set(ClassKey, value.FromString(es.types.NameOf(typ)))
	return res
}

// scalar converts a value of bool, numeric or string kind.
func scalar(val reflect.Value) *value.Value {
	switch val.Kind() {
	case reflect.Bool:
		return value.FromBool(val.Bool())
	case reflect.String:
		return value.FromString(val.String())
	case reflect.Int:
		return value.FromIntKind(val.Int(), value.Int)
	case reflect.Int8:
		return value.FromIntKind(val.Int(), value.Int8)
	case reflect.Int16:
		return value.FromIntKind(val.Int(), value.Int16)
	case reflect.Int32:
		return value.FromIntKind(val.Int(), value.Int32)
	case reflect.Int64:
		return value.FromIntKind(val.Int(), value.Int64)
	case reflect.Uint, reflect.Uintptr:
		return value.FromUint(val.Uint(), value.Uint)
	case reflect.Uint8:
		return value.FromUint(val.Uint(), value.Uint8)
	case reflect.Uint16:
		return value.FromUint(val.Uint(), value.Uint16)
	case reflect.Uint32:
		return value.FromUint(val.Uint(), value.Uint32)
	case reflect.Uint64:
		return value.FromUint(val.Uint(), value.Uint64)
	case reflect.Float32:
		return value.FromFloatKind(val.Float(), value.Float32)
	case reflect.Float64:
		return value.FromFloatKind(val.Float(), value.Float64)
	}
	return value.Null()
}

func (es *encState) encodeAdapter(a adapter.Adapter, val reflect.Value, path string) (*value.Value, error) {
	if debug.Codec() {
		debug.Logf("adapter %s at %q\n", a.Type(), path)
	}
	out, err := a.Serialize(val.Interface())
	if err != nil {
		return nil, &Error{Op: "serialize", Path: path, Err: err, Message: "adapter for " + a.Type().String()}
	}
	if out == nil {
		return nil, serializeErr(path, ErrAdapterContract, "adapter for %s returned nil", a.Type())
	}
	res := es.tagged(a.Type())
	if out.Type != value.MapType {
		res.Set(ValueKey, out)
		return res, nil
	}
	for i, key := range out.Fields {
		if isReservedKey(key) {
			return nil, serializeErr(path, ErrAdapterContract, "adapter for %s used reserved key %q", a.Type(), key)
		}
		res.Set(key, out.Values[i])
	}
	return res, nil
}

func (es *encState) encodeEnum(val reflect.Value, path string) (*value.Value, error) {
	typ := val.Type()
	s, ok := val.Interface().(interface{ String() string })
	if !ok {
		return nil, serializeErr(path, ErrUnsupported, "enum %s has no String method", typ)
	}
	name := s.String()
	if _, ok := es.types.EnumConstant(typ, name); !ok {
		return nil, serializeErr(path, ErrUnknownEnumConstant, "%s has no constant %q", typ, name)
	}
	res := es.tagged(typ)
	res.Set(ValueKey, value.FromString(name))
	return res, nil
}

// encodeList emits slices and arrays whose declared element type is
// simple as flat scalars; other elements are classified one by one.
func (es *encState) encodeList(val reflect.Value, path string, depth int) (*value.Value, error) {
	n := val.Len()
	res := &value.Value{Type: value.ListType, Values: make([]*value.Value, n)}
	if isSimple(val.Type().Elem()) {
		for i := range n {
			res.Values[i] = scalar(val.Index(i))
		}
		return res, nil
	}
	for i := range n {
		ev, err := es.encode(val.Index(i), indexPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		res.Values[i] = ev
	}
	return res, nil
}

// encodeMap emits maps with keys in sorted order.
func (es *encState) encodeMap(val reflect.Value, path string, depth int) (*value.Value, error) {
	typ := val.Type()
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		key, err := formatKey(iter.Key())
		if err != nil {
			return nil, serializeErr(path, ErrUnsupported, "map key: %v", err)
		}
		entries = append(entries, entry{key: key, val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	res := value.NewMap()
	simple := isSimple(typ.Elem())
	for _, e := range entries {
		if simple {
			res.Set(e.key, scalar(e.val))
			continue
		}
		ev, err := es.encode(e.val, joinPath(path, e.key), depth+1)
		if err != nil {
			return nil, err
		}
		res.Set(e.key, ev)
	}
	return res, nil
}

func formatKey(k reflect.Value) (string, error) {
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		d, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(d), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(k.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64), nil
	}
	return "", &unsupportedKeyError{typ: k.Type()}
}

type unsupportedKeyError struct{ typ reflect.Type }

func (e *unsupportedKeyError) Error() string {
	return "cannot use " + e.typ.String() + " as a map key"
}

// encodeStruct reflects over the persisted fields of val. self is the
// pointer val was reached through, if any; a field pointing back to it
// is skipped rather than reported as a cycle.
func (es *encState) encodeStruct(val, self reflect.Value, path string, depth int) (*value.Value, error) {
	typ := val.Type()
	si, err := structFields(typ)
	if err != nil {
		return nil, serializeErr(path, err, "")
	}
	res := es.tagged(typ)
	for _, fi := range si.fields {
		fv := fieldForRead(val, fi.index)
		if !fv.IsValid() || isNil(fv) {
			continue
		}
		if self.IsValid() && fv.Kind() == reflect.Pointer && fv.Type() == self.Type() && fv.Pointer() == self.Pointer() {
			if debug.Codec() {
				debug.Logf("skipping self reference %s\n", joinPath(path, fi.name))
			}
			continue
		}
		ev, err := es.encode(fv, joinPath(path, fi.name), depth+1)
		if err != nil {
			return nil, err
		}
		res.Set(fi.name, ev)
	}
	return res, nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
