package value

// Equal reports whether a and b are structurally equal.
//
// Numbers compare by magnitude regardless of Kind. Maps compare as key
// sets, so field order does not matter. Lists compare element-wise.
func Equal(a, b *Value) bool {
	if a == b {
		return true
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case BoolType:
		return a.Bool == b.Bool
	case StringType:
		return a.String == b.String
	case NumberType:
		return equalNumbers(a, b)
	case ListType:
		if len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if !Equal(a.Values[i], b.Values[i]) {
				return false
			}
		}
		return true
	case MapType:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i, key := range a.Fields {
			j := b.index(key)
			if j < 0 || !Equal(a.Values[i], b.Values[j]) {
				return false
			}
		}
		return true
	}
	return true
}

func equalNumbers(a, b *Value) bool {
	if a.Kind.IsFloat() || b.Kind.IsFloat() {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af == bf
	}
	if a.Kind.IsUnsigned() || b.Kind.IsUnsigned() {
		au, aok := a.AsUint64()
		bu, bok := b.AsUint64()
		if !aok || !bok {
			return false
		}
		return au == bu
	}
	return a.Int == b.Int
}
