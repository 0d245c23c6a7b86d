package main

import (
	"fmt"

	"github.com/polyfrost/go-oneconfig/format"

	"github.com/scott-cotton/cli"
)

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	docs := make([][]byte, 0, len(args))
	for _, file := range args {
		v, in, err := cfg.getValue(cc, file)
		if err != nil {
			return err
		}
		out := cfg.outFormat(in)
		d, err := format.EncodeValue(out, v)
		if err != nil {
			return fmt.Errorf("error encoding %s as %s: %w", file, out, err)
		}
		docs = append(docs, d)
	}
	return writeDocs(cc.Out, docs)
}
