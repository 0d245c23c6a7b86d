package format

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/polyfrost/go-oneconfig/value"
)

// TOML has no null, so null map entries are left out when writing. A
// null list element cannot be left out without shifting the elements
// after it, so writing one is an error. The encoder writes keys in its
// own order; reading restores document order from the parser's key list.
type tomlEncoding struct{}

func (tomlEncoding) encode(v *value.Value) ([]byte, error) {
	if v.Type != value.MapType {
		return nil, fmt.Errorf("TOML document must be a map, got %s", v.Type)
	}
	doc, err := toTOML(v, "")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ErrTOMLNull is returned for a list element TOML cannot represent.
var ErrTOMLNull = errors.New("TOML cannot hold a null list element")

func toTOML(v *value.Value, path string) (any, error) {
	switch v.Type {
	case value.ListType:
		res := make([]any, len(v.Values))
		for i, c := range v.Values {
			ep := fmt.Sprintf("%s[%d]", path, i)
			if c.IsNull() {
				return nil, fmt.Errorf("%w at %s", ErrTOMLNull, ep)
			}
			x, err := toTOML(c, ep)
			if err != nil {
				return nil, err
			}
			res[i] = x
		}
		return res, nil
	case value.MapType:
		res := make(map[string]any, len(v.Fields))
		for i, key := range v.Fields {
			if v.Values[i].IsNull() {
				continue
			}
			x, err := toTOML(v.Values[i], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			res[key] = x
		}
		return res, nil
	}
	return v.Any(), nil
}

func (tomlEncoding) decode(data []byte) (*value.Value, error) {
	doc := map[string]any{}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	order := map[string][]string{}
	seen := map[string]bool{}
	for _, key := range md.Keys() {
		full := key.String()
		if seen[full] || len(key) == 0 {
			continue
		}
		seen[full] = true
		parent := key[:len(key)-1].String()
		order[parent] = append(order[parent], key[len(key)-1])
	}
	return fromTOML(doc, nil, order)
}

func fromTOML(x any, path toml.Key, order map[string][]string) (*value.Value, error) {
	switch t := x.(type) {
	case map[string]any:
		res := value.NewMap()
		for _, key := range order[path.String()] {
			if c, ok := t[key]; ok {
				cv, err := fromTOML(c, append(path[:len(path):len(path)], key), order)
				if err != nil {
					return nil, err
				}
				res.Set(key, cv)
			}
		}
		// keys the parser did not list, such as those of inline tables
		// inside arrays
		for _, key := range slices.Sorted(maps.Keys(t)) {
			if res.Has(key) {
				continue
			}
			cv, err := fromTOML(t[key], append(path[:len(path):len(path)], key), order)
			if err != nil {
				return nil, err
			}
			res.Set(key, cv)
		}
		return res, nil
	case []map[string]any:
		res := value.FromSlice(nil)
		for _, e := range t {
			cv, err := fromTOML(e, path, order)
			if err != nil {
				return nil, err
			}
			res.Values = append(res.Values, cv)
		}
		return res, nil
	case []any:
		res := value.FromSlice(nil)
		for _, e := range t {
			cv, err := fromTOML(e, path, order)
			if err != nil {
				return nil, err
			}
			res.Values = append(res.Values, cv)
		}
		return res, nil
	case time.Time:
		return value.FromString(t.Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		// toml.LocalDate, LocalTime and LocalDateTime
		return value.FromString(t.String()), nil
	}
	return value.FromAny(x)
}
