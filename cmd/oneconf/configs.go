package main

import (
	"fmt"
	"io"
	"os"

	"github.com/polyfrost/go-oneconfig/adapter"
	"github.com/polyfrost/go-oneconfig/codec"
	"github.com/polyfrost/go-oneconfig/format"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='output with color'"`
	Gops  bool `cli:"name=gops desc='run a gops agent while the command runs'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`
	T bool `cli:"name=t aliases=toml desc='do i/o in toml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command

	oc *codec.Codec
}

// objCodec returns the codec shared by the commands. It has the builtin
// adapters registered, so documents holding durations, times and colors
// load as those types.
func (cfg *MainConfig) objCodec() *codec.Codec {
	if cfg.oc == nil {
		reg := adapter.NewRegistry()
		adapter.RegisterBuiltins(reg)
		cfg.oc = codec.New(reg, nil)
	}
	return cfg.oc
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) flagFormat() (format.Format, bool) {
	switch {
	case cfg.J:
		return format.JSONFormat, true
	case cfg.Y:
		return format.YAMLFormat, true
	case cfg.T:
		return format.TOMLFormat, true
	}
	return 0, false
}

// inFormat picks the format to read path in: -I, then -j/-y/-t, then the
// file extension. Standard input defaults to json.
func (cfg *MainConfig) inFormat(path string) (format.Format, error) {
	if cfg.InFormat != nil {
		return *cfg.InFormat, nil
	}
	if f, ok := cfg.flagFormat(); ok {
		return f, nil
	}
	if path == "-" {
		return format.JSONFormat, nil
	}
	f, err := format.ForPath(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return f, nil
}

func (cfg *MainConfig) outFormat(in format.Format) format.Format {
	if cfg.OutFormat != nil {
		return *cfg.OutFormat
	}
	if f, ok := cfg.flagFormat(); ok {
		return f
	}
	return in
}

func (cfg *MainConfig) colors(w io.Writer) *Colors {
	if cfg.Color {
		return NewColors()
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return NoColors()
	}
	f, ok := w.(*os.File)
	if !ok {
		return NoColors()
	}
	if isatty.IsTerminal(f.Fd()) {
		return NewColors()
	}
	return NoColors()
}

type ViewConfig struct {
	*MainConfig

	View *cli.Command
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`
	Lines   bool `cli:"name=lines desc='diff the tree dumps line by line'"`

	Diff *cli.Command
}

type MergeConfig struct {
	*MainConfig
	Overwrite bool `cli:"name=w aliases=overwrite desc='later files replace values of earlier ones'"`

	Merge *cli.Command
}

type PatchConfig struct {
	*MainConfig
	MergePatch bool `cli:"name=m aliases=merge desc='treat the patch as a json merge patch'"`
	String     bool `cli:"name=s desc='patch arg as string'"`

	Patch *cli.Command
}
