package libdiff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polyfrost/go-oneconfig/value"
)

type Op int

const (
	Insert Op = iota
	Delete
	Replace
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	}
	return fmt.Sprintf("<op %d>", int(o))
}

// Change is one edit turning a value into another. Path holds map keys
// and list indices; list indices refer to the list as it stands after
// the preceding changes have been applied.
type Change struct {
	Op   Op
	Path []string
	From *value.Value // nil for Insert
	To   *value.Value // nil for Delete

	// Spans describe a Replace of one string by another.
	Spans []Span
}

func (c Change) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", c.Op, PathString(c.Path))
	switch c.Op {
	case Insert:
		fmt.Fprintf(&sb, ": %s", oneLine(c.To))
	case Delete:
		fmt.Fprintf(&sb, ": %s", oneLine(c.From))
	case Replace:
		fmt.Fprintf(&sb, ": %s -> %s", oneLine(c.From), oneLine(c.To))
	}
	return sb.String()
}

// PathString renders a path as "a.b[2].c".
func PathString(path []string) string {
	if len(path) == 0 {
		return "$"
	}
	var sb strings.Builder
	for i, p := range path {
		if strings.HasPrefix(p, "[") {
			sb.WriteString(p)
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func oneLine(v *value.Value) string {
	return strings.Join(strings.Fields(v.Dump()), " ")
}

func index(i int) string { return "[" + strconv.Itoa(i) + "]" }

func parseIndex(p string) (int, bool) {
	if !strings.HasPrefix(p, "[") || !strings.HasSuffix(p, "]") {
		return 0, false
	}
	i, err := strconv.Atoi(p[1 : len(p)-1])
	return i, err == nil
}

// Diff returns the changes turning from into to. Maps are compared by
// key, lists by aligning their elements, and strings that differ in
// place carry character spans.
func Diff(from, to *value.Value) []Change {
	return diff(nil, from, to, nil)
}

func diff(path []string, from, to *value.Value, out []Change) []Change {
	if sameScalar(from, to) {
		return out
	}
	if from.Type != to.Type {
		return append(out, replace(path, from, to))
	}
	switch from.Type {
	case value.MapType:
		return diffMap(path, from, to, out)
	case value.ListType:
		return diffList(path, from, to, out)
	case value.StringType:
		c := replace(path, from, to)
		c.Spans = Strings(from.String, to.String)
		return append(out, c)
	}
	return append(out, replace(path, from, to))
}

// sameScalar reports equal scalars, treating numbers of different kinds
// as different.
func sameScalar(a, b *value.Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case value.NullType:
		return true
	case value.BoolType:
		return a.Bool == b.Bool
	case value.StringType:
		return a.String == b.String
	case value.NumberType:
		return a.Kind == b.Kind && value.Equal(a, b)
	}
	return false
}

func replace(path []string, from, to *value.Value) Change {
	return Change{Op: Replace, Path: clonePath(path), From: from, To: to}
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}

func diffMap(path []string, from, to *value.Value, out []Change) []Change {
	for i, key := range from.Fields {
		tv := to.Get(key)
		kp := append(clonePath(path), key)
		if tv == nil {
			out = append(out, Change{Op: Delete, Path: kp, From: from.Values[i]})
			continue
		}
		out = diff(kp, from.Values[i], tv, out)
	}
	for i, key := range to.Fields {
		if !from.Has(key) {
			out = append(out, Change{Op: Insert, Path: append(clonePath(path), key), To: to.Values[i]})
		}
	}
	return out
}
