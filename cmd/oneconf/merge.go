package main

import (
	"fmt"

	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/format"

	"github.com/scott-cotton/cli"
)

func merge(cfg *MergeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Merge.Parse(cc, args)
	if err != nil {
		cfg.Merge.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: merge requires a base file and at least one more", cli.ErrUsage)
	}
	dst, b, err := cfg.getTree(cc, args[0])
	if err != nil {
		return err
	}
	for _, file := range args[1:] {
		src, _, err := cfg.getTree(cc, file)
		if err != nil {
			return err
		}
		if err := config.Merge(dst, src, cfg.Overwrite, false); err != nil {
			return fmt.Errorf("error merging %s: %w", file, err)
		}
	}
	out := cfg.outFormat(b.Format())
	ob, err := format.New(out, cfg.objCodec())
	if err != nil {
		return err
	}
	d, err := ob.Serialize(dst)
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	_, err = cc.Out.Write(d)
	return err
}
