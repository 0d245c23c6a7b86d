package value

import (
	"strconv"
	"strings"
)

// Dump returns a depth-indented rendering of v for diagnostics. The
// output is not a parseable format.
func (v *Value) Dump() string {
	var sb strings.Builder
	v.dump(&sb, 0)
	return sb.String()
}

func (v *Value) dump(sb *strings.Builder, depth int) {
	if v == nil {
		sb.WriteString("null")
		return
	}
	switch v.Type {
	case NullType:
		sb.WriteString("null")
	case BoolType:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case StringType:
		sb.WriteString(strconv.Quote(v.String))
	case NumberType:
		sb.WriteString(v.NumberText())
		sb.WriteString(" (")
		sb.WriteString(v.Kind.String())
		sb.WriteByte(')')
	case ListType:
		if len(v.Values) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for _, c := range v.Values {
			newline(sb, depth+1)
			c.dump(sb, depth+1)
		}
		newline(sb, depth)
		sb.WriteByte(']')
	case MapType:
		if len(v.Values) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, c := range v.Values {
			newline(sb, depth+1)
			sb.WriteString(v.Fields[i])
			sb.WriteString(": ")
			c.dump(sb, depth+1)
		}
		newline(sb, depth)
		sb.WriteByte('}')
	}
}

func newline(sb *strings.Builder, depth int) {
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("  ", depth))
}

// NumberText formats a number without kind information.
func (v *Value) NumberText() string {
	switch {
	case v.Kind.IsFloat():
		bits := 64
		if v.Kind == Float32 {
			bits = 32
		}
		return strconv.FormatFloat(v.Float, 'g', -1, bits)
	case v.Kind.IsUnsigned():
		return strconv.FormatUint(v.Uint, 10)
	}
	return strconv.FormatInt(v.Int, 10)
}
