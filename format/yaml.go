package format

import (
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/polyfrost/go-oneconfig/value"
)

type yamlEncoding struct{}

func (yamlEncoding) encode(v *value.Value) ([]byte, error) {
	return yaml.Marshal(toYAML(v))
}

// toYAML converts v to plain data, with maps as yaml.MapSlice so that
// key order survives marshaling.
func toYAML(v *value.Value) any {
	switch v.Type {
	case value.ListType:
		res := make([]any, len(v.Values))
		for i, c := range v.Values {
			res[i] = toYAML(c)
		}
		return res
	case value.MapType:
		res := make(yaml.MapSlice, len(v.Fields))
		for i, key := range v.Fields {
			res[i] = yaml.MapItem{Key: key, Value: toYAML(v.Values[i])}
		}
		return res
	}
	return v.Any()
}

func (yamlEncoding) decode(data []byte) (*value.Value, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	return fromYAML(doc)
}

func fromYAML(x any) (*value.Value, error) {
	switch t := x.(type) {
	case yaml.MapSlice:
		res := value.NewMap()
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			c, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			res.Set(key, c)
		}
		return res, nil
	case []any:
		res := value.FromSlice(nil)
		for _, e := range t {
			c, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			res.Values = append(res.Values, c)
		}
		return res, nil
	case uint64:
		if t <= math.MaxInt64 {
			return value.FromInt(int64(t)), nil
		}
		return value.FromUint(t, value.Uint64), nil
	case time.Time:
		return value.FromString(t.Format(time.RFC3339Nano)), nil
	}
	return value.FromAny(x)
}
