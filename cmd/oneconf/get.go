package main

import (
	"fmt"
	"io"

	"github.com/polyfrost/go-oneconfig/format"
	"github.com/polyfrost/go-oneconfig/value"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, a path", cli.ErrUsage)
	}
	path, err := splitPath(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	files := args[1:]
	if len(files) == 0 {
		files = []string{"-"}
	}
	for i, file := range files {
		if i > 0 {
			cc.Out.Write([]byte("---\n"))
		}
		if err := getFile(cfg, cc, cc.Out, file, path); err != nil {
			return fmt.Errorf("error querying %s with %s: %w", file, args[0], err)
		}
	}
	return nil
}

func getFile(cfg *GetConfig, cc *cli.Context, w io.Writer, file string, path []string) error {
	v, in, err := cfg.getValue(cc, file)
	if err != nil {
		return err
	}
	res, err := lookup(v, path)
	if err != nil {
		return err
	}
	if res.Type == value.StringType {
		_, err := fmt.Fprintln(w, res.String)
		return err
	}
	out := cfg.outFormat(in)
	if res.Type != value.MapType && out == format.TOMLFormat {
		// toml documents are tables
		out = format.JSONFormat
	}
	d, err := format.EncodeValue(out, res)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}
