package format

import (
	jsonpatch "github.com/evanphx/json-patch"

	"github.com/polyfrost/go-oneconfig/codec"
	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/debug"
	"github.com/polyfrost/go-oneconfig/value"
)

// Patch applies an RFC 6902 JSON patch to the JSON form of t and returns
// the patched tree. Keys keep the order they had in t; added keys follow.
func Patch(t *config.Tree, patch []byte, c *codec.Codec) (*config.Tree, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, err
	}
	return patchWith(t, c, func(doc []byte) ([]byte, error) {
		return ops.Apply(doc)
	})
}

// MergePatch applies an RFC 7396 JSON merge patch to t.
func MergePatch(t *config.Tree, patch []byte, c *codec.Codec) (*config.Tree, error) {
	return patchWith(t, c, func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patch)
	})
}

func patchWith(t *config.Tree, c *codec.Codec, apply func([]byte) ([]byte, error)) (*config.Tree, error) {
	p := NewPersister(c)
	orig, err := p.TreeToValue(t)
	if err != nil {
		return nil, err
	}
	doc, err := jsonEncoding{}.encode(orig)
	if err != nil {
		return nil, err
	}
	out, err := apply(doc)
	if err != nil {
		return nil, err
	}
	if debug.Format() {
		debug.Logf("patched document:\n%s\n", out)
	}
	v, err := jsonEncoding{}.decode(out)
	if err != nil {
		return nil, err
	}
	return p.ValueToTree(t.ID(), reorder(v, orig))
}

// reorder sorts the keys of maps in v by their position in like, with
// keys absent from like last.
func reorder(v, like *value.Value) *value.Value {
	if like == nil || v.Type != like.Type {
		return v
	}
	switch v.Type {
	case value.ListType:
		for i := range min(len(v.Values), len(like.Values)) {
			v.Values[i] = reorder(v.Values[i], like.Values[i])
		}
	case value.MapType:
		res := value.NewMap()
		for _, key := range like.Fields {
			if c := v.Get(key); c != nil {
				res.Set(key, reorder(c, like.Get(key)))
			}
		}
		for i, key := range v.Fields {
			if !res.Has(key) {
				res.Set(key, v.Values[i])
			}
		}
		return res
	}
	return v
}
