package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/polyfrost/go-oneconfig/value"
)

type jsonEncoding struct{}

func (jsonEncoding) encode(v *value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeJSON writes v compactly, keeping map key order.
func writeJSON(buf *bytes.Buffer, v *value.Value) error {
	switch v.Type {
	case value.NullType:
		buf.WriteString("null")
	case value.BoolType:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case value.StringType:
		d, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		buf.Write(d)
	case value.NumberType:
		if v.Kind.IsFloat() && (math.IsInf(v.Float, 0) || math.IsNaN(v.Float)) {
			return fmt.Errorf("cannot encode %v as JSON", v.Float)
		}
		s := v.NumberText()
		buf.WriteString(s)
		if v.Kind.IsFloat() && !strings.ContainsAny(s, ".eE") {
			buf.WriteString(".0")
		}
	case value.ListType:
		buf.WriteByte('[')
		for i, c := range v.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.MapType:
		buf.WriteByte('{')
		for i, key := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			d, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(d)
			buf.WriteByte(':')
			if err := writeJSON(buf, v.Values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func (jsonEncoding) decode(data []byte) (*value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return value.Null(), nil
	}
	if err != nil {
		return nil, err
	}
	v, err := readJSON(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

// readJSON builds a value from the token stream starting with tok,
// keeping object key order.
func readJSON(dec *json.Decoder, tok json.Token) (*value.Value, error) {
	switch t := tok.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.FromBool(t), nil
	case string:
		return value.FromString(t), nil
	case json.Number:
		return parseNumber(string(t))
	case float64:
		return value.FromFloat(t), nil
	case json.Delim:
		switch t {
		case '[':
			res := value.FromSlice(nil)
			for {
				tok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := tok.(json.Delim); ok && d == ']' {
					return res, nil
				}
				c, err := readJSON(dec, tok)
				if err != nil {
					return nil, err
				}
				res.Values = append(res.Values, c)
			}
		case '{':
			res := value.NewMap()
			for {
				tok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				if d, ok := tok.(json.Delim); ok && d == '}' {
					return res, nil
				}
				key, ok := tok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", tok)
				}
				tok, err = dec.Token()
				if err != nil {
					return nil, err
				}
				c, err := readJSON(dec, tok)
				if err != nil {
					return nil, err
				}
				res.Set(key, c)
			}
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// parseNumber keeps integers exact: int64 when they fit, else uint64,
// else float64.
func parseNumber(s string) (*value.Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.FromInt(i), nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return value.FromUint(u, value.Uint64), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return value.FromFloat(f), nil
}
