package value

import (
	"fmt"
	"maps"
	"slices"
)

// Any converts v to plain Go data: nil, bool, the Go numeric type named
// by Kind, string, []any and map[string]any.
func (v *Value) Any() any {
	if v == nil {
		return nil
	}
	switch v.Type {
	case BoolType:
		return v.Bool
	case StringType:
		return v.String
	case NumberType:
		return v.number()
	case ListType:
		res := make([]any, len(v.Values))
		for i, c := range v.Values {
			res[i] = c.Any()
		}
		return res
	case MapType:
		res := make(map[string]any, len(v.Fields))
		for i, key := range v.Fields {
			res[key] = v.Values[i].Any()
		}
		return res
	}
	return nil
}

func (v *Value) number() any {
	switch v.Kind {
	case Int:
		return int(v.Int)
	case Int8:
		return int8(v.Int)
	case Int16:
		return int16(v.Int)
	case Int32:
		return int32(v.Int)
	case Int64:
		return v.Int
	case Uint:
		return uint(v.Uint)
	case Uint8:
		return uint8(v.Uint)
	case Uint16:
		return uint16(v.Uint)
	case Uint32:
		return uint32(v.Uint)
	case Uint64:
		return v.Uint
	case Float32:
		return float32(v.Float)
	default:
		return v.Float
	}
}

// textNumber is satisfied by encoding/json.Number and its drop-in
// replacements.
type textNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// FromAny converts plain Go data, as produced by generic decoders, to a
// Value. Maps with string keys are emitted in sorted key order.
func FromAny(x any) (*Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return v, nil
	case bool:
		return FromBool(v), nil
	case string:
		return FromString(v), nil
	case int:
		return FromIntKind(int64(v), Int), nil
	case int8:
		return FromIntKind(int64(v), Int8), nil
	case int16:
		return FromIntKind(int64(v), Int16), nil
	case int32:
		return FromIntKind(int64(v), Int32), nil
	case int64:
		return FromIntKind(v, Int64), nil
	case uint:
		return FromUint(uint64(v), Uint), nil
	case uint8:
		return FromUint(uint64(v), Uint8), nil
	case uint16:
		return FromUint(uint64(v), Uint16), nil
	case uint32:
		return FromUint(uint64(v), Uint32), nil
	case uint64:
		return FromUint(v, Uint64), nil
	case float32:
		return FromFloatKind(float64(v), Float32), nil
	case float64:
		return FromFloat(v), nil
	case textNumber:
		if i, err := v.Int64(); err == nil {
			return FromInt(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return FromFloat(f), nil
	case []any:
		res := &Value{Type: ListType, Values: make([]*Value, len(v))}
		for i, c := range v {
			cv, err := FromAny(c)
			if err != nil {
				return nil, err
			}
			res.Values[i] = cv
		}
		return res, nil
	case map[string]any:
		res := NewMap()
		for _, key := range slices.Sorted(maps.Keys(v)) {
			cv, err := FromAny(v[key])
			if err != nil {
				return nil, err
			}
			res.Set(key, cv)
		}
		return res, nil
	case []map[string]any:
		// BurntSushi/toml decodes arrays of tables this way.
		res := &Value{Type: ListType, Values: make([]*Value, len(v))}
		for i, c := range v {
			cv, err := FromAny(c)
			if err != nil {
				return nil, err
			}
			res.Values[i] = cv
		}
		return res, nil
	}
	return nil, fmt.Errorf("cannot convert %T to a value", x)
}
