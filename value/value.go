package value

import (
	"maps"
	"math"
	"slices"
)

// Value is a node of the universal value tree.
//
// The fields in use depend on Type: Bool for BoolType, Int/Uint/Float
// selected by Kind for NumberType, String for StringType, Values for
// ListType, and Fields/Values (parallel, ordered) for MapType.
type Value struct {
	Type Type
	Kind Kind

	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string

	Fields []string
	Values []*Value
}

func Null() *Value {
	return &Value{Type: NullType}
}

func FromBool(v bool) *Value {
	return &Value{Type: BoolType, Bool: v}
}

func FromString(v string) *Value {
	return &Value{Type: StringType, String: v}
}

// FromInt returns an int64 number.
func FromInt(v int64) *Value {
	return FromIntKind(v, Int64)
}

// FromIntKind returns a signed number recorded as kind k.
func FromIntKind(v int64, k Kind) *Value {
	return &Value{Type: NumberType, Kind: k, Int: v}
}

// FromUint returns an unsigned number recorded as kind k.
func FromUint(v uint64, k Kind) *Value {
	return &Value{Type: NumberType, Kind: k, Uint: v}
}

// FromFloat returns a float64 number.
func FromFloat(v float64) *Value {
	return FromFloatKind(v, Float64)
}

func FromFloatKind(v float64, k Kind) *Value {
	return &Value{Type: NumberType, Kind: k, Float: v}
}

func FromSlice(vs []*Value) *Value {
	res := &Value{Type: ListType, Values: make([]*Value, len(vs))}
	copy(res.Values, vs)
	return res
}

// NewMap returns an empty ordered map.
func NewMap() *Value {
	return &Value{Type: MapType}
}

// FromMap builds a map with keys in sorted order.
func FromMap(m map[string]*Value) *Value {
	res := &Value{
		Type:   MapType,
		Fields: make([]string, 0, len(m)),
		Values: make([]*Value, 0, len(m)),
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		res.Fields = append(res.Fields, key)
		res.Values = append(res.Values, m[key])
	}
	return res
}

type KeyVal struct {
	Key string
	Val *Value
}

// FromKeyVals builds a map preserving the order of kvs. A repeated key
// keeps its first position and its last value.
func FromKeyVals(kvs []KeyVal) *Value {
	res := NewMap()
	for _, kv := range kvs {
		res.Set(kv.Key, kv.Val)
	}
	return res
}

func (v *Value) IsNull() bool { return v == nil || v.Type == NullType }

func (v *Value) Len() int {
	switch v.Type {
	case ListType, MapType:
		return len(v.Values)
	case StringType:
		return len(v.String)
	}
	return 0
}

func (v *Value) index(key string) int {
	for i, f := range v.Fields {
		if f == key {
			return i
		}
	}
	return -1
}

// Get returns the value at key in a map, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Type != MapType {
		return nil
	}
	if i := v.index(key); i >= 0 {
		return v.Values[i]
	}
	return nil
}

func (v *Value) Has(key string) bool {
	return v != nil && v.Type == MapType && v.index(key) >= 0
}

// Set replaces the value at key in place or appends it.
func (v *Value) Set(key string, x *Value) {
	if x == nil {
		x = Null()
	}
	if i := v.index(key); i >= 0 {
		v.Values[i] = x
		return
	}
	v.Fields = append(v.Fields, key)
	v.Values = append(v.Values, x)
}

func (v *Value) Delete(key string) bool {
	i := v.index(key)
	if i < 0 {
		return false
	}
	v.Fields = slices.Delete(v.Fields, i, i+1)
	v.Values = slices.Delete(v.Values, i, i+1)
	return true
}

func (v *Value) Keys() []string {
	return slices.Clone(v.Fields)
}

func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	res := *v
	res.Fields = slices.Clone(v.Fields)
	if v.Values != nil {
		res.Values = make([]*Value, len(v.Values))
		for i, c := range v.Values {
			res.Values[i] = c.Clone()
		}
	}
	return &res
}

// Visit walks v depth first, calling f before (isPost false) and after
// (isPost true) the children. Children are skipped when f returns false
// on the pre visit.
func (v *Value) Visit(f func(v *Value, isPost bool) (bool, error)) error {
	dive, err := f(v, false)
	if err != nil {
		return err
	}
	if dive {
		for _, c := range v.Values {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	_, err = f(v, true)
	return err
}

// AsInt64 returns the number as an int64 if it is representable exactly.
func (v *Value) AsInt64() (int64, bool) {
	if v.Type != NumberType {
		return 0, false
	}
	switch {
	case v.Kind.IsFloat():
		if v.Float != math.Trunc(v.Float) || v.Float < math.MinInt64 || v.Float >= math.MaxInt64 {
			return 0, false
		}
		return int64(v.Float), true
	case v.Kind.IsUnsigned():
		if v.Uint > math.MaxInt64 {
			return 0, false
		}
		return int64(v.Uint), true
	}
	return v.Int, true
}

// AsUint64 returns the number as a uint64 if it is representable exactly.
func (v *Value) AsUint64() (uint64, bool) {
	if v.Type != NumberType {
		return 0, false
	}
	switch {
	case v.Kind.IsFloat():
		if v.Float != math.Trunc(v.Float) || v.Float < 0 || v.Float >= math.MaxUint64 {
			return 0, false
		}
		return uint64(v.Float), true
	case v.Kind.IsUnsigned():
		return v.Uint, true
	}
	if v.Int < 0 {
		return 0, false
	}
	return uint64(v.Int), true
}

func (v *Value) AsFloat64() (float64, bool) {
	if v.Type != NumberType {
		return 0, false
	}
	switch {
	case v.Kind.IsFloat():
		return v.Float, true
	case v.Kind.IsUnsigned():
		return float64(v.Uint), true
	}
	return float64(v.Int), true
}
