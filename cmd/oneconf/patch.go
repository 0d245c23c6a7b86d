package main

import (
	"fmt"

	"github.com/polyfrost/go-oneconfig/format"

	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: patch requires 2 arguments, a json patch, and a file to which to apply it", cli.ErrUsage)
	}
	p, err := getPatch(cfg, cc, args[0])
	if err != nil {
		return err
	}
	target, b, err := cfg.getTree(cc, args[1])
	if err != nil {
		return err
	}
	c := cfg.objCodec()
	apply := format.Patch
	if cfg.MergePatch {
		apply = format.MergePatch
	}
	res, err := apply(target, p, c)
	if err != nil {
		return fmt.Errorf("error patching %s: %w", args[1], err)
	}
	ob, err := format.New(cfg.outFormat(b.Format()), c)
	if err != nil {
		return err
	}
	d, err := ob.Serialize(res)
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	_, err = cc.Out.Write(d)
	return err
}

func getPatch(cfg *PatchConfig, cc *cli.Context, arg string) ([]byte, error) {
	if cfg.String {
		return []byte(arg), nil
	}
	d, err := readObjFile(cc, arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return d, nil
}
