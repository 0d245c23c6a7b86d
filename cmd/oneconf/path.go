package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polyfrost/go-oneconfig/value"
)

// splitPath splits "$.a.b[2].c" into "a", "b", "[2]", "c". The leading
// "$" is optional.
func splitPath(p string) ([]string, error) {
	p = strings.TrimPrefix(p, "$")
	var res []string
	for p != "" {
		switch p[0] {
		case '.':
			p = p[1:]
		case '[':
			j := strings.IndexByte(p, ']')
			if j < 0 {
				return nil, fmt.Errorf("unterminated index in %q", p)
			}
			res = append(res, p[:j+1])
			p = p[j+1:]
		default:
			j := strings.IndexAny(p, ".[")
			if j < 0 {
				j = len(p)
			}
			res = append(res, p[:j])
			p = p[j:]
		}
	}
	return res, nil
}

func lookup(v *value.Value, path []string) (*value.Value, error) {
	for i, p := range path {
		if strings.HasPrefix(p, "[") {
			n, err := strconv.Atoi(p[1 : len(p)-1])
			if err != nil {
				return nil, fmt.Errorf("bad index %s", p)
			}
			if v.Type != value.ListType || n < 0 || n >= len(v.Values) {
				return nil, fmt.Errorf("no element %s at %s", p, strings.Join(path[:i], "."))
			}
			v = v.Values[n]
			continue
		}
		if v.Type != value.MapType {
			return nil, fmt.Errorf("%s is a %s, not a map", strings.Join(path[:i], "."), v.Type)
		}
		next := v.Get(p)
		if next == nil {
			return nil, fmt.Errorf("no field %q", p)
		}
		v = next
	}
	return v, nil
}
