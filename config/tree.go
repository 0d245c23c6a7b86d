package config

import (
	"errors"
	"slices"
)

// Tree is an interior node: an ordered set of child nodes keyed by their
// ids.
type Tree struct {
	id    string
	meta  Meta
	keys  []string
	nodes map[string]Node
}

func NewTree(id string) *Tree {
	return &Tree{id: id, nodes: make(map[string]Node)}
}

// NewTreeFrom returns a tree holding nodes in the given order.
func NewTreeFrom(id string, nodes ...Node) *Tree {
	t := NewTree(id)
	for _, n := range nodes {
		t.Put(n)
	}
	return t
}

// Clone returns a copy of the tree structure and metadata. Properties
// are copied with AnyProperty.Clone.
func (t *Tree) Clone() *Tree {
	c := NewTree(t.id)
	c.meta.CopyFrom(&t.meta)
	for _, k := range t.keys {
		c.Put(cloneNode(t.nodes[k]))
	}
	return c
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *Tree:
		return n.Clone()
	case AnyProperty:
		return n.Clone()
	}
	return n
}

func (t *Tree) ID() string  { return t.id }
func (t *Tree) Meta() *Meta { return &t.meta }

// Put adds n under its id. A node already present under that id is
// replaced in place.
func (t *Tree) Put(n Node) {
	if n == nil {
		return
	}
	id := n.ID()
	if _, exists := t.nodes[id]; !exists {
		t.keys = append(t.keys, id)
	}
	t.nodes[id] = n
}

// Get looks up a node by a path of ids. Every segment but the last must
// name a tree; otherwise, and when any segment is absent, Get returns nil.
// With no path Get returns t.
func (t *Tree) Get(path ...string) Node {
	var cur Node = t
	for _, id := range path {
		tree, ok := cur.(*Tree)
		if !ok {
			return nil
		}
		if cur, ok = tree.nodes[id]; !ok {
			return nil
		}
	}
	return cur
}

// GetProperty is Get restricted to properties.
func (t *Tree) GetProperty(path ...string) AnyProperty {
	p, _ := t.Get(path...).(AnyProperty)
	return p
}

// GetTree is Get restricted to trees.
func (t *Tree) GetTree(path ...string) *Tree {
	sub, _ := t.Get(path...).(*Tree)
	return sub
}

func (t *Tree) Remove(id string) bool {
	if _, ok := t.nodes[id]; !ok {
		return false
	}
	delete(t.nodes, id)
	t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == id })
	return true
}

func (t *Tree) Len() int { return len(t.keys) }

// Keys returns the child ids in insertion order.
func (t *Tree) Keys() []string {
	return slices.Clone(t.keys)
}

// Nodes returns the children in insertion order.
func (t *Tree) Nodes() []Node {
	res := make([]Node, len(t.keys))
	for i, k := range t.keys {
		res[i] = t.nodes[k]
	}
	return res
}

// SkipTree may be returned by a Visit function to skip the children of
// the tree it was called with.
var SkipTree = errors.New("skip tree")

// Visit calls f for every descendant of t depth first, parents before
// children, with the path of ids leading to the node.
func (t *Tree) Visit(f func(path []string, n Node) error) error {
	return t.visit(nil, f)
}

func (t *Tree) visit(prefix []string, f func([]string, Node) error) error {
	for _, k := range t.keys {
		n := t.nodes[k]
		path := append(slices.Clip(prefix), k)
		err := f(path, n)
		if errors.Is(err, SkipTree) {
			continue
		}
		if err != nil {
			return err
		}
		if sub, ok := n.(*Tree); ok {
			if err := sub.visit(path, f); err != nil {
				return err
			}
		}
	}
	return nil
}
