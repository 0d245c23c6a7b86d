package libdiff

import (
	"errors"
	"fmt"
	"slices"

	"github.com/polyfrost/go-oneconfig/value"
)

var ErrPatch = errors.New("cannot apply change")

// Apply applies changes in order to a copy of v.
func Apply(v *value.Value, changes []Change) (*value.Value, error) {
	res := v.Clone()
	for _, c := range changes {
		var err error
		res, err = apply(res, c)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrPatch, c, err)
		}
	}
	return res, nil
}

func apply(root *value.Value, c Change) (*value.Value, error) {
	if len(c.Path) == 0 {
		if c.Op != Replace {
			return nil, errors.New("only replace applies to the root")
		}
		return c.To.Clone(), nil
	}
	parent := root
	for _, p := range c.Path[:len(c.Path)-1] {
		next, err := child(parent, p)
		if err != nil {
			return nil, err
		}
		parent = next
	}
	last := c.Path[len(c.Path)-1]

	if i, ok := parseIndex(last); ok {
		if parent.Type != value.ListType {
			return nil, fmt.Errorf("%s is not a list", parent.Type)
		}
		switch c.Op {
		case Insert:
			if i > len(parent.Values) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
			parent.Values = slices.Insert(parent.Values, i, c.To.Clone())
		case Delete:
			if i >= len(parent.Values) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
			parent.Values = slices.Delete(parent.Values, i, i+1)
		case Replace:
			if i >= len(parent.Values) {
				return nil, fmt.Errorf("index %d out of range", i)
			}
			parent.Values[i] = c.To.Clone()
		}
		return root, nil
	}

	if parent.Type != value.MapType {
		return nil, fmt.Errorf("%s is not a map", parent.Type)
	}
	switch c.Op {
	case Insert:
		if parent.Has(last) {
			return nil, fmt.Errorf("key %q already present", last)
		}
		parent.Set(last, c.To.Clone())
	case Delete:
		if !parent.Delete(last) {
			return nil, fmt.Errorf("key %q not present", last)
		}
	case Replace:
		if !parent.Has(last) {
			return nil, fmt.Errorf("key %q not present", last)
		}
		parent.Set(last, c.To.Clone())
	}
	return root, nil
}

func child(v *value.Value, p string) (*value.Value, error) {
	if i, ok := parseIndex(p); ok {
		if v.Type != value.ListType || i >= len(v.Values) {
			return nil, fmt.Errorf("no element %s", p)
		}
		return v.Values[i], nil
	}
	if c := v.Get(p); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("no key %q", p)
}
