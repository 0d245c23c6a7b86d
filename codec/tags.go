package codec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag key read by the codec.
//
//	type Profile struct {
//	    Name    string `config:"name"`
//	    Label   string `config:"name=label"`
//	    Cache   []byte `config:"transient"`
//	    Scratch int    `config:"-"`
//	}
//
// A bare first word, or name=, renames the key a field is stored under;
// transient (or "-") excludes the field. Any other key is an error.
const TagName = "config"

// ParseStructTag parses a config tag into key=value pairs and flags.
// Flags map to "". A bare first part other than transient is taken as
// the name. Parts are separated by commas or spaces; values may be single
// quoted.
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)
	if tag == "-" {
		result["transient"] = ""
		return result, nil
	}
	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c == '\'':
			quoted = !quoted
		case (c == ',' || c == ' ') && !quoted:
			flush()
		default:
			current.WriteByte(c)
		}
	}
	if quoted {
		return nil, fmt.Errorf("invalid tag %q: unterminated quote", tag)
	}
	flush()

	for i, part := range parts {
		key, val, hasVal := strings.Cut(part, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid tag %q: empty key in %q", tag, part)
		}
		if i == 0 && !hasVal && key != "transient" {
			result["name"] = key
			continue
		}
		if !hasVal {
			result[key] = ""
			continue
		}
		result[key] = val
	}
	return result, nil
}

type fieldInfo struct {
	name  string
	index []int
	typ   reflect.Type
}

type structInfo struct {
	fields []*fieldInfo
	byName map[string]*fieldInfo
}

var structCache sync.Map // reflect.Type -> *structInfo

// structFields returns the persisted fields of a struct type in
// declaration order. Fields of embedded structs are promoted in place;
// an outer field shadows a promoted field of the same name.
func structFields(typ reflect.Type) (*structInfo, error) {
	if si, ok := structCache.Load(typ); ok {
		return si.(*structInfo), nil
	}
	si := &structInfo{byName: map[string]*fieldInfo{}}
	if err := collectFields(typ, nil, si, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}
	structCache.Store(typ, si)
	return si, nil
}

func collectFields(typ reflect.Type, prefix []int, si *structInfo, seen map[reflect.Type]bool) error {
	if seen[typ] {
		return nil
	}
	seen[typ] = true
	defer delete(seen, typ)

	type embedded struct {
		typ   reflect.Type
		index []int
	}
	var promoted []embedded

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		index := append(append([]int(nil), prefix...), i)

		tags, err := ParseStructTag(f.Tag.Get(TagName))
		if err != nil {
			return fmt.Errorf("%w: field %s.%s: %w", ErrUnsupported, typ, f.Name, err)
		}
		for key := range tags {
			if key != "name" && key != "transient" {
				return fmt.Errorf("%w: field %s.%s: unknown %s tag key %q", ErrUnsupported, typ, f.Name, TagName, key)
			}
		}
		if _, skip := tags["transient"]; skip {
			continue
		}
		name, renamed := tags["name"]

		if f.Anonymous && !renamed {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				if !f.IsExported() {
					continue
				}
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				promoted = append(promoted, embedded{typ: ft, index: index})
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if !renamed || name == "" {
			name = f.Name
		}
		if isReservedKey(name) {
			return fmt.Errorf("%w: field %s.%s is stored as %q", ErrReservedKeyCollision, typ, f.Name, name)
		}
		if _, dup := si.byName[name]; dup {
			continue
		}
		fi := &fieldInfo{name: name, index: index, typ: f.Type}
		si.fields = append(si.fields, fi)
		si.byName[name] = fi
	}
	for _, e := range promoted {
		if err := collectFields(e.typ, e.index, si, seen); err != nil {
			return err
		}
	}
	return nil
}

// fieldForRead returns the field at index, or an invalid value when an
// embedded pointer on the way is nil.
func fieldForRead(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// fieldForWrite returns the field at index, allocating nil embedded
// pointers on the way.
func fieldForWrite(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("cannot allocate embedded %s", v.Type())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}
