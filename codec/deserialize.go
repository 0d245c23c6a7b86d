package codec

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/polyfrost/go-oneconfig/adapter"
	"github.com/polyfrost/go-oneconfig/debug"
	"github.com/polyfrost/go-oneconfig/value"
)

// Deserialize converts v back to a Go value without a declared
// destination type.
//
// Scalars come back as the Go type recorded in their Kind. Maps must
// carry a class tag naming a registered or predeclared type. Lists infer
// their element type from their elements; an empty list is ambiguous.
func (c *Codec) Deserialize(v *value.Value) (any, error) {
	return c.decodeAny(v, "", 0)
}

// DeserializeInto decodes v into the value pointed to by ptr, using the
// declared type of the destination to drive numeric coercion and list
// unboxing.
func (c *Codec) DeserializeInto(v *value.Value, ptr any) error {
	if ptr == nil {
		return deserializeErr("", ErrFieldAccess, "destination value cannot be nil")
	}
	dst := reflect.ValueOf(ptr)
	if dst.Kind() != reflect.Pointer {
		return deserializeErr("", ErrFieldAccess, "destination must be a pointer, got %T", ptr)
	}
	if dst.IsNil() {
		return deserializeErr("", ErrFieldAccess, "destination pointer cannot be nil")
	}
	return c.decodeInto(v, dst.Elem(), "", 0)
}

// DeserializeAs decodes v into a new value of typ.
func (c *Codec) DeserializeAs(v *value.Value, typ reflect.Type) (any, error) {
	dst := reflect.New(typ)
	if err := c.decodeInto(v, dst.Elem(), "", 0); err != nil {
		return nil, err
	}
	return dst.Elem().Interface(), nil
}

func (c *Codec) className(v *value.Value) (string, bool) {
	for _, key := range []string{ClassKey, ClassTypeKey} {
		if cv := v.Get(key); cv != nil && cv.Type == value.StringType {
			return cv.String, true
		}
	}
	return "", false
}

func (c *Codec) decodeAny(v *value.Value, path string, depth int) (any, error) {
	if depth > c.maxDepth {
		return nil, deserializeErr(path, ErrMaxDepth, "limit %d", c.maxDepth)
	}
	if v.IsNull() {
		return nil, nil
	}
	switch v.Type {
	case value.BoolType:
		return v.Bool, nil
	case value.StringType:
		return v.String, nil
	case value.NumberType:
		return v.Any(), nil
	case value.ListType:
		return c.decodeList(v.Values, nil, path, depth)
	}

	name, ok := c.className(v)
	if !ok {
		return nil, deserializeErr(path, ErrMissingClassTag, "map with keys %s", strings.Join(v.Fields, ", "))
	}
	if elem, isArray := strings.CutSuffix(name, arraySuffix); isArray {
		payload := v.Get(ValueKey)
		if payload == nil || payload.Type != value.ListType {
			return nil, deserializeErr(path, ErrFieldAccess, "array descriptor %q without a value list", name)
		}
		if len(payload.Values) == 0 {
			return nil, deserializeErr(path, ErrAmbiguousEmptyList, "cannot infer element type of %q", name)
		}
		et, ok := c.resolve(elem)
		if !ok {
			return nil, deserializeErr(path, ErrClassResolution, "%q", elem)
		}
		return c.decodeList(payload.Values, et, path, depth)
	}
	typ, ok := c.resolve(name)
	if !ok {
		return nil, deserializeErr(path, ErrClassResolution, "%q", name)
	}
	dst := reflect.New(typ).Elem()
	if err := c.decodeInto(v, dst, path, depth); err != nil {
		return nil, err
	}
	return dst.Interface(), nil
}

// resolve finds the type for a class name in the type table, falling
// back to the types handled by registered adapters and then to the
// composite names Serialize gives to values held in interfaces.
func (c *Codec) resolve(name string) (reflect.Type, bool) {
	if typ, ok := c.types.Resolve(name); ok {
		return typ, true
	}
	for _, typ := range c.adapters.Types() {
		if c.types.NameOf(typ) == name {
			return typ, true
		}
	}
	return c.resolveComposite(name)
}

// maxArrayClassSize bounds the size in bytes of array types built from
// class names.
const maxArrayClassSize = 1 << 20

func (c *Codec) resolveComposite(name string) (reflect.Type, bool) {
	var (
		elem  string
		build func(reflect.Type) reflect.Type
	)
	switch {
	case name == anyClass:
		return reflect.TypeFor[any](), true
	case strings.HasPrefix(name, "*"):
		elem, build = name[1:], reflect.PointerTo
	case strings.HasPrefix(name, "[]"):
		elem, build = name[2:], reflect.SliceOf
	case strings.HasPrefix(name, "["):
		n, rest, ok := strings.Cut(name[1:], "]")
		size, err := strconv.Atoi(n)
		if !ok || err != nil || size < 0 {
			return nil, false
		}
		et, ok := c.resolve(rest)
		if !ok || (et.Size() > 0 && uintptr(size) > maxArrayClassSize/et.Size()) {
			return nil, false
		}
		return reflect.ArrayOf(size, et), true
	case strings.HasPrefix(name, "map["):
		key, rest, ok := splitMapClass(name[len("map["):])
		if !ok {
			return nil, false
		}
		kt, ok := c.resolve(key)
		if !ok || !kt.Comparable() {
			return nil, false
		}
		elem, build = rest, func(t reflect.Type) reflect.Type { return reflect.MapOf(kt, t) }
	default:
		return nil, false
	}
	et, ok := c.resolve(elem)
	if !ok {
		return nil, false
	}
	return build(et), true
}

// splitMapClass splits "K]V", the tail of a map class name, at the
// bracket closing the key.
func splitMapClass(s string) (key, elem string, ok bool) {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
				continue
			}
			return s[:i], s[i+1:], i > 0 && i+1 < len(s)
		}
	}
	return "", "", false
}

// decodeList builds a slice of elemType, or of the dynamic type shared by
// all decoded elements when elemType is nil. Mixed element types yield
// []any.
func (c *Codec) decodeList(vs []*value.Value, elemType reflect.Type, path string, depth int) (any, error) {
	if elemType != nil {
		res := reflect.MakeSlice(reflect.SliceOf(elemType), len(vs), len(vs))
		for i, ev := range vs {
			if err := c.decodeInto(ev, res.Index(i), indexPath(path, i), depth+1); err != nil {
				return nil, err
			}
		}
		return res.Interface(), nil
	}
	if len(vs) == 0 {
		return nil, deserializeErr(path, ErrAmbiguousEmptyList, "no element type to infer from")
	}
	items := make([]any, len(vs))
	var common reflect.Type
	mixed := false
	for i, ev := range vs {
		x, err := c.decodeAny(ev, indexPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = x
		t := reflect.TypeOf(x)
		switch {
		case i == 0:
			common = t
		case t != common:
			mixed = true
		}
	}
	if mixed || common == nil {
		return items, nil
	}
	res := reflect.MakeSlice(reflect.SliceOf(common), len(items), len(items))
	for i, x := range items {
		res.Index(i).Set(reflect.ValueOf(x))
	}
	return res.Interface(), nil
}

// payload returns what an adapter or scalar decoder should see for v:
// the value entry of a tagged map if present, else v without its class
// keys.
func payload(v *value.Value) *value.Value {
	if v.Type != value.MapType {
		return v
	}
	if !v.Has(ClassKey) && !v.Has(ClassTypeKey) {
		return v
	}
	if pv := v.Get(ValueKey); pv != nil {
		return pv
	}
	res := v.Clone()
	res.Delete(ClassKey)
	res.Delete(ClassTypeKey)
	return res
}

func (c *Codec) decodeInto(v *value.Value, dst reflect.Value, path string, depth int) error {
	if depth > c.maxDepth {
		return deserializeErr(path, ErrMaxDepth, "limit %d", c.maxDepth)
	}
	if !dst.CanSet() {
		return deserializeErr(path, ErrFieldAccess, "cannot set %s", dst.Type())
	}
	typ := dst.Type()

	switch typ.Kind() {
	case reflect.Pointer:
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		if a, ok := c.adapters.Lookup(typ); ok {
			return c.decodeAdapter(a, v, dst, path)
		}
		if dst.IsNil() {
			dst.Set(reflect.New(typ.Elem()))
		}
		return c.decodeInto(v, dst.Elem(), path, depth+1)
	case reflect.Interface:
		if v.IsNull() {
			dst.SetZero()
			return nil
		}
		x, err := c.decodeAny(v, path, depth+1)
		if err != nil {
			return err
		}
		if x == nil {
			dst.SetZero()
			return nil
		}
		xv := reflect.ValueOf(x)
		if !xv.Type().AssignableTo(typ) {
			return deserializeErr(path, ErrFieldAccess, "%s does not implement %s", xv.Type(), typ)
		}
		dst.Set(xv)
		return nil
	}

	if v.IsNull() {
		dst.SetZero()
		return nil
	}
	if a, ok := c.adapters.Lookup(typ); ok {
		return c.decodeAdapter(a, v, dst, path)
	}
	if c.types.IsEnum(typ) {
		return c.decodeEnum(v, dst, path)
	}

	switch typ.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return setScalar(payload(v), dst, path)
	case reflect.Slice:
		return c.decodeSlice(payload(v), dst, path, depth)
	case reflect.Array:
		return c.decodeArray(payload(v), dst, path, depth)
	case reflect.Map:
		return c.decodeMap(payload(v), dst, path, depth)
	case reflect.Struct:
		return c.decodeStruct(v, dst, path, depth)
	}
	return deserializeErr(path, ErrUnsupported, "%s", typ)
}

func (c *Codec) decodeAdapter(a adapter.Adapter, v *value.Value, dst reflect.Value, path string) error {
	if debug.Codec() {
		debug.Logf("adapter %s at %q\n", a.Type(), path)
	}
	out, err := a.Deserialize(payload(v))
	if err != nil {
		return &Error{Op: "deserialize", Path: path, Err: err, Message: "adapter for " + a.Type().String()}
	}
	ov := reflect.ValueOf(out)
	if out == nil || isNil(ov) {
		return deserializeErr(path, ErrAdapterContract, "adapter for %s returned nil", a.Type())
	}
	if !ov.Type().AssignableTo(dst.Type()) {
		return deserializeErr(path, ErrAdapterContract, "adapter for %s returned %s", a.Type(), ov.Type())
	}
	dst.Set(ov)
	return nil
}

// decodeEnum looks the constant up by name in the destination's enum, so
// a value written from a different enum type with matching names decodes.
func (c *Codec) decodeEnum(v *value.Value, dst reflect.Value, path string) error {
	nv := payload(v)
	if nv.Type != value.StringType {
		return deserializeErr(path, ErrFieldAccess, "enum %s from %s", dst.Type(), nv.Type)
	}
	cv, ok := c.types.EnumConstant(dst.Type(), nv.String)
	if !ok {
		return deserializeErr(path, ErrUnknownEnumConstant, "%s has no constant %q", dst.Type(), nv.String)
	}
	dst.Set(cv)
	return nil
}

func (c *Codec) decodeSlice(v *value.Value, dst reflect.Value, path string, depth int) error {
	if v.Type != value.ListType {
		return deserializeErr(path, ErrFieldAccess, "expected list for %s, got %s", dst.Type(), v.Type)
	}
	n := len(v.Values)
	res := reflect.MakeSlice(dst.Type(), n, n)
	for i, ev := range v.Values {
		if err := c.decodeInto(ev, res.Index(i), indexPath(path, i), depth+1); err != nil {
			return err
		}
	}
	dst.Set(res)
	return nil
}

func (c *Codec) decodeArray(v *value.Value, dst reflect.Value, path string, depth int) error {
	if v.Type != value.ListType {
		return deserializeErr(path, ErrFieldAccess, "expected list for %s, got %s", dst.Type(), v.Type)
	}
	if len(v.Values) != dst.Len() {
		return deserializeErr(path, ErrFieldAccess, "list of %d elements for %s", len(v.Values), dst.Type())
	}
	for i, ev := range v.Values {
		if err := c.decodeInto(ev, dst.Index(i), indexPath(path, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) decodeMap(v *value.Value, dst reflect.Value, path string, depth int) error {
	if v.Type != value.MapType {
		return deserializeErr(path, ErrFieldAccess, "expected map for %s, got %s", dst.Type(), v.Type)
	}
	typ := dst.Type()
	res := reflect.MakeMapWithSize(typ, len(v.Fields))
	for i, key := range v.Fields {
		kv := reflect.New(typ.Key()).Elem()
		if err := parseKey(key, kv); err != nil {
			return deserializeErr(path, ErrFieldAccess, "map key %q: %v", key, err)
		}
		ev := reflect.New(typ.Elem()).Elem()
		if err := c.decodeInto(v.Values[i], ev, joinPath(path, key), depth+1); err != nil {
			return err
		}
		res.SetMapIndex(kv, ev)
	}
	dst.Set(res)
	return nil
}

func parseKey(s string, kv reflect.Value) error {
	if tu, ok := kv.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return tu.UnmarshalText([]byte(s))
	}
	switch kv.Kind() {
	case reflect.String:
		kv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		kv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, kv.Type().Bits())
		if err != nil {
			return err
		}
		kv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, kv.Type().Bits())
		if err != nil {
			return err
		}
		kv.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, kv.Type().Bits())
		if err != nil {
			return err
		}
		kv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported key type %s", kv.Type())
	}
	return nil
}

// decodeStruct instantiates the destination type and sets its fields by
// name. Keys with no matching field are skipped.
func (c *Codec) decodeStruct(v *value.Value, dst reflect.Value, path string, depth int) error {
	typ := dst.Type()
	if v.Type != value.MapType {
		return deserializeErr(path, ErrFieldAccess, "expected map for %s, got %s", typ, v.Type)
	}
	if _, ok := c.className(v); !ok {
		return deserializeErr(path, ErrMissingClassTag, "decoding %s", typ)
	}
	si, err := structFields(typ)
	if err != nil {
		return deserializeErr(path, err, "")
	}
	inst, err := c.types.Instantiate(typ)
	if err != nil {
		return deserializeErr(path, ErrClassResolution, "%v", err)
	}
	for i, key := range v.Fields {
		if key == ClassKey || key == ClassTypeKey {
			continue
		}
		fi, ok := si.byName[key]
		if !ok {
			c.log.Debug("skipping unknown field", "type", typ.String(), "field", key, "path", path)
			continue
		}
		fv, err := fieldForWrite(inst, fi.index)
		if err != nil {
			return deserializeErr(joinPath(path, key), ErrFieldAccess, "%v", err)
		}
		if err := c.decodeInto(v.Values[i], fv, joinPath(path, key), depth+1); err != nil {
			return err
		}
	}
	dst.Set(inst)
	return nil
}
