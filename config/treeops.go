package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/polyfrost/go-oneconfig/debug"
	"github.com/polyfrost/go-oneconfig/value"
)

// DeepEquals reports whether a and b are structurally equal: trees with
// the same keys holding deep-equal children, or properties with equal
// values. Slice and array values are compared element by element, so
// two properties holding distinct slices with the same contents are
// equal.
func DeepEquals(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, aTree := a.(*Tree)
	tb, bTree := b.(*Tree)
	if aTree != bTree {
		return false
	}
	if aTree {
		if ta.Len() != tb.Len() {
			return false
		}
		for _, k := range ta.keys {
			nb, ok := tb.nodes[k]
			if !ok || !DeepEquals(ta.nodes[k], nb) {
				return false
			}
		}
		return true
	}
	pa, aok := a.(AnyProperty)
	pb, bok := b.(AnyProperty)
	if !aok || !bok {
		return false
	}
	return valuesEqual(reflect.ValueOf(pa.Value()), reflect.ValueOf(pb.Value()))
}

func valuesEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Kind() == reflect.Interface {
		return valuesEqual(a.Elem(), b)
	}
	if b.Kind() == reflect.Interface {
		return valuesEqual(a, b.Elem())
	}
	if a.Type() != b.Type() {
		return false
	}
	if va, ok := a.Interface().(*value.Value); ok {
		return value.Equal(va, b.Interface().(*value.Value))
	}
	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := range a.Len() {
			if !valuesEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	if a.Comparable() {
		return a.Equal(b)
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// Merge merges src into dst.
//
// Keys only in src are added to dst as clones of their src node. Trees
// present in both are merged recursively. For properties present in
// both, a clone of the src property replaces the dst one when overwrite
// is set, after taking over the dst metadata if copyMeta is set;
// otherwise the dst property keeps its value and receives the src
// metadata. src is never modified and shares no nodes with dst
// afterwards, though property values themselves are not copied.
//
// A tree and a property under the same key cannot be merged; Merge
// returns an error wrapping ErrStructuralMismatch, leaving dst partially
// merged.
func Merge(dst, src *Tree, overwrite, copyMeta bool) error {
	return merge(dst, src, overwrite, copyMeta, "")
}

func merge(dst, src *Tree, overwrite, copyMeta bool, path string) error {
	for _, k := range src.keys {
		sn := src.nodes[k]
		p := k
		if path != "" {
			p = path + "." + k
		}
		dn, ok := dst.nodes[k]
		if !ok {
			if debug.Merge() {
				debug.Logf("merge add %s\n", p)
			}
			dst.Put(cloneNode(sn))
			continue
		}
		st, sTree := sn.(*Tree)
		dt, dTree := dn.(*Tree)
		switch {
		case sTree && dTree:
			if err := merge(dt, st, overwrite, copyMeta, p); err != nil {
				return err
			}
		case sTree != dTree:
			return fmt.Errorf("%w at %s: cannot merge %s into %s", ErrStructuralMismatch, p, kindOf(sn), kindOf(dn))
		case overwrite:
			if debug.Merge() {
				debug.Logf("merge overwrite %s\n", p)
			}
			c := cloneNode(sn)
			if copyMeta {
				c.Meta().CopyFrom(dn.Meta())
			}
			dst.Put(c)
		default:
			dn.Meta().CopyFrom(sn.Meta())
		}
	}
	return nil
}

// String returns an indented dump of the tree for diagnostics.
func (t *Tree) String() string {
	var sb strings.Builder
	t.dump(&sb, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s {\n", indent, t.id)
	for _, k := range t.keys {
		switch n := t.nodes[k].(type) {
		case *Tree:
			n.dump(sb, depth+1)
		case AnyProperty:
			fmt.Fprintf(sb, "%s  %s: %s (%s)\n", indent, k, formatValue(n.Value()), n.Type())
		}
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	case *value.Value:
		return strings.ReplaceAll(x.Dump(), "\n", " ")
	}
	return fmt.Sprintf("%v", v)
}
