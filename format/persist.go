package format

import (
	"fmt"
	"reflect"

	"github.com/polyfrost/go-oneconfig/codec"
	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/debug"
	"github.com/polyfrost/go-oneconfig/value"
)

// Persister converts trees to and from the value documents written by
// backends.
//
// A tree becomes a map of its children and each property value is
// written by the codec: bools, numbers, strings and lists of those come
// out plain; structs, maps, pointers and other named types are tagged
// with their class. On the way back, maps tagged with a class decode
// through the codec and other maps become nested trees.
type Persister struct {
	codec *codec.Codec
}

func NewPersister(c *codec.Codec) *Persister {
	if c == nil {
		c = codec.New(nil, nil)
	}
	return &Persister{codec: c}
}

func (p *Persister) Codec() *codec.Codec { return p.codec }

func (p *Persister) TreeToValue(t *config.Tree) (*value.Value, error) {
	return p.treeToValue(t, "")
}

func (p *Persister) treeToValue(t *config.Tree, path string) (*value.Value, error) {
	res := value.NewMap()
	for _, n := range t.Nodes() {
		np := joinPath(path, n.ID())
		switch n := n.(type) {
		case *config.Tree:
			v, err := p.treeToValue(n, np)
			if err != nil {
				return nil, err
			}
			res.Set(n.ID(), v)
		case config.AnyProperty:
			v, err := p.propertyValue(n, np)
			if err != nil {
				return nil, err
			}
			res.Set(n.ID(), v)
		}
	}
	return res, nil
}

func (p *Persister) propertyValue(prop config.AnyProperty, path string) (*value.Value, error) {
	x := prop.Value()
	if v, ok := x.(*value.Value); ok {
		return v.Clone(), nil
	}
	v, err := p.codec.Serialize(x)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", path, err)
	}
	return v, nil
}

// ValueToTree builds a tree with the given id from a map value.
// Properties of the result are *config.Property[any].
func (p *Persister) ValueToTree(id string, v *value.Value) (*config.Tree, error) {
	if v.IsNull() {
		return config.NewTree(id), nil
	}
	if v.Type != value.MapType {
		return nil, fmt.Errorf("document root must be a map, got %s", v.Type)
	}
	return p.valueToTree(id, v, "")
}

func (p *Persister) valueToTree(id string, v *value.Value, path string) (*config.Tree, error) {
	t := config.NewTree(id)
	for i, key := range v.Fields {
		child := v.Values[i]
		cp := joinPath(path, key)
		if child.Type == value.MapType && !tagged(child) {
			sub, err := p.valueToTree(key, child, cp)
			if err != nil {
				return nil, err
			}
			t.Put(sub)
			continue
		}
		x, err := p.decode(child)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", cp, err)
		}
		if debug.Format() {
			debug.Logf("load %s = %v\n", cp, x)
		}
		t.Put(config.NewProperty[any](key, x))
	}
	return t, nil
}

func (p *Persister) decode(v *value.Value) (any, error) {
	if v.Type == value.ListType && len(v.Values) == 0 {
		return []any{}, nil
	}
	return p.codec.Deserialize(v)
}

func tagged(v *value.Value) bool {
	return v.Has(codec.ClassKey) || v.Has(codec.ClassTypeKey)
}

// Apply loads the properties of src into dst. Properties present in
// both are converted to the type of the dst property through the codec,
// so a document decoded into Property[any] values can populate a tree of
// typed properties. Nodes only in src are added to dst.
func (p *Persister) Apply(dst, src *config.Tree) error {
	v, err := p.TreeToValue(src)
	if err != nil {
		return err
	}
	return p.ApplyValue(dst, v)
}

// ApplyValue is Apply for a document value. Values for existing typed
// properties decode straight into the property's type, so their classes
// need not be registered with the codec.
func (p *Persister) ApplyValue(dst *config.Tree, v *value.Value) error {
	if v.IsNull() {
		return nil
	}
	if v.Type != value.MapType {
		return fmt.Errorf("document root must be a map, got %s", v.Type)
	}
	return p.applyValue(dst, v, "")
}

func (p *Persister) applyValue(dst *config.Tree, v *value.Value, path string) error {
	for i, key := range v.Fields {
		child := v.Values[i]
		cp := joinPath(path, key)
		isTree := child.Type == value.MapType && !tagged(child)
		switch dn := dst.Get(key).(type) {
		case nil:
			if isTree {
				sub, err := p.valueToTree(key, child, cp)
				if err != nil {
					return err
				}
				dst.Put(sub)
				continue
			}
			x, err := p.decode(child)
			if err != nil {
				return fmt.Errorf("property %s: %w", cp, err)
			}
			dst.Put(config.NewProperty[any](key, x))
		case *config.Tree:
			if !isTree {
				return fmt.Errorf("%w at %s: cannot load a value into a tree", config.ErrStructuralMismatch, cp)
			}
			if err := p.applyValue(dn, child, cp); err != nil {
				return err
			}
		case config.AnyProperty:
			if err := p.applyProperty(dn, child, cp); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Persister) applyProperty(dst config.AnyProperty, v *value.Value, path string) error {
	typ := dst.Type()
	var (
		x   any
		err error
	)
	if typ.Kind() == reflect.Interface {
		x, err = p.decode(v)
	} else {
		x, err = p.codec.DeserializeAs(v, typ)
	}
	if err != nil {
		return fmt.Errorf("property %s: %w", path, err)
	}
	if debug.Format() {
		debug.Logf("apply %s = %v\n", path, x)
	}
	if err := dst.SetAny(x); err != nil {
		return fmt.Errorf("property %s: %w", path, err)
	}
	return nil
}

// Apply loads src into dst converting values with c. See Persister.Apply.
func Apply(dst, src *config.Tree, c *codec.Codec) error {
	return NewPersister(c).Apply(dst, src)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
