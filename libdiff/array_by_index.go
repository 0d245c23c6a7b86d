package libdiff

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/polyfrost/go-oneconfig/value"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// diffList aligns the elements of two lists and emits changes by index.
//
//  1. each element is summarised as <type>-<value> for scalars and as
//     its type alone for maps, lists and multi-line strings
//  2. the sequences of summaries are diffed as runes
//  3. aligned elements are diffed recursively
//  4. a run of deletions followed by a run of insertions is paired up
//     into replacements
func diffList(path []string, from, to *value.Value, out []Change) []Change {
	m := map[string]rune{}
	fromRunes := mapValues(m, from)
	toRunes := mapValues(m, to)
	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)

	fi, ti, ri := 0, 0, 0
	for i := 0; i < len(diffs); i++ {
		d := &diffs[i]
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffpatch.DiffEqual:
			for range n {
				out = diff(append(clonePath(path), index(ri)), from.Values[fi], to.Values[ti], out)
				ri++
				fi++
				ti++
			}
		case diffpatch.DiffDelete:
			ins := 0
			if i+1 < len(diffs) && diffs[i+1].Type == diffpatch.DiffInsert {
				ins = utf8.RuneCountInString(diffs[i+1].Text)
				i++
			}
			k := min(n, ins)
			for range k {
				out = append(out, replace(append(clonePath(path), index(ri)), from.Values[fi], to.Values[ti]))
				ri++
				fi++
				ti++
			}
			for range n - k {
				out = append(out, Change{Op: Delete, Path: append(clonePath(path), index(ri)), From: from.Values[fi]})
				fi++
			}
			for range ins - k {
				out = append(out, Change{Op: Insert, Path: append(clonePath(path), index(ri)), To: to.Values[ti]})
				ri++
				ti++
			}
		case diffpatch.DiffInsert:
			for range n {
				out = append(out, Change{Op: Insert, Path: append(clonePath(path), index(ri)), To: to.Values[ti]})
				ri++
				ti++
			}
		}
	}
	return out
}

func mapValues(m map[string]rune, v *value.Value) []rune {
	rs := make([]rune, len(v.Values))
	for i, e := range v.Values {
		sum := summaryStr(e)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

func summaryStr(v *value.Value) string {
	switch v.Type {
	case value.MapType, value.ListType, value.NullType:
		return v.Type.String()
	case value.BoolType:
		return v.Type.String() + "-" + strconv.FormatBool(v.Bool)
	case value.StringType:
		if strings.Contains(v.String, "\n") {
			return v.Type.String() + "/m"
		}
		return v.Type.String() + "-" + v.String
	}
	return v.Type.String() + "-" + v.Kind.String() + "-" + v.NumberText()
}
