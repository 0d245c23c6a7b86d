package format

import (
	"fmt"

	"github.com/polyfrost/go-oneconfig/codec"
	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/value"
)

// Backend reads and writes trees in one text format.
type Backend interface {
	Format() Format
	Serialize(t *config.Tree) ([]byte, error)
	Deserialize(id string, data []byte) (*config.Tree, error)
	// Supports reports whether path has an extension of this format.
	Supports(path string) bool
}

// encoding converts between a value and document bytes.
type encoding interface {
	encode(v *value.Value) ([]byte, error)
	decode(data []byte) (*value.Value, error)
}

type backend struct {
	format Format
	enc    encoding
	p      *Persister
}

// New returns the backend for f, converting property values with c.
func New(f Format, c *codec.Codec) (Backend, error) {
	var enc encoding
	switch f {
	case JSONFormat:
		enc = jsonEncoding{}
	case YAMLFormat:
		enc = yamlEncoding{}
	case TOMLFormat:
		enc = tomlEncoding{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
	return &backend{format: f, enc: enc, p: NewPersister(c)}, nil
}

// ForFile returns the backend for the extension of path.
func ForFile(path string, c *codec.Codec) (Backend, error) {
	f, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return New(f, c)
}

func (b *backend) Format() Format { return b.format }

func (b *backend) Supports(path string) bool {
	f, err := ForPath(path)
	return err == nil && f == b.format
}

func (b *backend) Serialize(t *config.Tree) ([]byte, error) {
	v, err := b.p.TreeToValue(t)
	if err != nil {
		return nil, err
	}
	return b.enc.encode(v)
}

func (b *backend) Deserialize(id string, data []byte) (*config.Tree, error) {
	v, err := b.enc.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.format, err)
	}
	return b.p.ValueToTree(id, v)
}

// EncodeValue writes v in format f.
func EncodeValue(f Format, v *value.Value) ([]byte, error) {
	b, err := New(f, nil)
	if err != nil {
		return nil, err
	}
	return b.(*backend).enc.encode(v)
}

// DecodeValue parses data in format f.
func DecodeValue(f Format, data []byte) (*value.Value, error) {
	b, err := New(f, nil)
	if err != nil {
		return nil, err
	}
	return b.(*backend).enc.decode(data)
}

// LoadInto parses data in format f and applies it to dst, converting
// values to the types of the properties already in dst.
func LoadInto(f Format, c *codec.Codec, dst *config.Tree, data []byte) error {
	v, err := DecodeValue(f, data)
	if err != nil {
		return fmt.Errorf("%s: %w", f, err)
	}
	return NewPersister(c).ApplyValue(dst, v)
}
