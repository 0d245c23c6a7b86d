package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/format"
	"github.com/polyfrost/go-oneconfig/value"

	"github.com/scott-cotton/cli"
)

func readObjFile(cc *cli.Context, path string) ([]byte, error) {
	var (
		r io.Reader
	)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return d, nil
}

func (cfg *MainConfig) getValue(cc *cli.Context, path string) (*value.Value, format.Format, error) {
	f, err := cfg.inFormat(path)
	if err != nil {
		return nil, 0, err
	}
	d, err := readObjFile(cc, path)
	if err != nil {
		return nil, 0, err
	}
	v, err := format.DecodeValue(f, d)
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return v, f, nil
}

func (cfg *MainConfig) getTree(cc *cli.Context, path string) (*config.Tree, format.Backend, error) {
	f, err := cfg.inFormat(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := format.New(f, cfg.objCodec())
	if err != nil {
		return nil, nil, err
	}
	d, err := readObjFile(cc, path)
	if err != nil {
		return nil, nil, err
	}
	t, err := b.Deserialize(treeID(path), d)
	if err != nil {
		return nil, nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return t, b, nil
}

func treeID(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeDocs(w io.Writer, docs [][]byte) error {
	for i, doc := range docs {
		if i > 0 {
			if _, err := w.Write([]byte("---\n")); err != nil {
				return err
			}
		}
		if _, err := w.Write(doc); err != nil {
			return fmt.Errorf("error writing document %d: %w", i, err)
		}
	}
	return nil
}
