package codec

import (
	"reflect"

	"github.com/polyfrost/go-oneconfig/value"
)

// setScalar writes a bool, number or string into dst. Numbers are
// converted to the destination's numeric kind; conversions that would
// overflow or drop a fractional part fail.
func setScalar(v *value.Value, dst reflect.Value, path string) error {
	typ := dst.Type()
	switch typ.Kind() {
	case reflect.Bool:
		if v.Type != value.BoolType {
			return mismatch(path, typ, v)
		}
		dst.SetBool(v.Bool)
	case reflect.String:
		if v.Type != value.StringType {
			return mismatch(path, typ, v)
		}
		dst.SetString(v.String)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type != value.NumberType {
			return mismatch(path, typ, v)
		}
		i, ok := v.AsInt64()
		if !ok || dst.OverflowInt(i) {
			return deserializeErr(path, ErrFieldAccess, "%s does not fit %s", v.NumberText(), typ)
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Type != value.NumberType {
			return mismatch(path, typ, v)
		}
		u, ok := v.AsUint64()
		if !ok || dst.OverflowUint(u) {
			return deserializeErr(path, ErrFieldAccess, "%s does not fit %s", v.NumberText(), typ)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		if v.Type != value.NumberType {
			return mismatch(path, typ, v)
		}
		f, _ := v.AsFloat64()
		if dst.OverflowFloat(f) {
			return deserializeErr(path, ErrFieldAccess, "%s does not fit %s", v.NumberText(), typ)
		}
		dst.SetFloat(f)
	default:
		return deserializeErr(path, ErrUnsupported, "%s", typ)
	}
	return nil
}

func mismatch(path string, typ reflect.Type, v *value.Value) error {
	return deserializeErr(path, ErrFieldAccess, "cannot assign %s to %s", v.Type, typ)
}
