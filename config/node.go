package config

import "errors"

// Node is an element of a configuration hierarchy: a *Tree or a
// property.
type Node interface {
	// ID is the key of the node in its parent tree.
	ID() string
	Meta() *Meta
}

var (
	// ErrStructuralMismatch reports a merge between a tree and a property
	// at the same key.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrTypeMismatch reports a value of the wrong type given to a property.
	ErrTypeMismatch = errors.New("type mismatch")
)

func kindOf(n Node) string {
	if _, ok := n.(*Tree); ok {
		return "tree"
	}
	return "property"
}
