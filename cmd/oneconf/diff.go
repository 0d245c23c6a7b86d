package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/polyfrost/go-oneconfig/format"
	"github.com/polyfrost/go-oneconfig/libdiff"
	"github.com/polyfrost/go-oneconfig/value"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	a, _, err := cfg.getValue(cc, args[0])
	if err != nil {
		return err
	}
	b, _, err := cfg.getValue(cc, args[1])
	if err != nil {
		return err
	}
	if cfg.Reverse {
		a, b = b, a
	}
	colors := cfg.colors(cc.Out)
	var differs bool
	if cfg.Lines {
		differs, err = diffLines(format.NewPersister(cfg.objCodec()), colors, cc.Out, a, b)
	} else {
		differs, err = diffValues(colors, cc.Out, a, b)
	}
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func diffValues(c *Colors, w io.Writer, a, b *value.Value) (bool, error) {
	changes := libdiff.Diff(a, b)
	for _, ch := range changes {
		if _, err := io.WriteString(w, formatChange(c, ch)+"\n"); err != nil {
			return false, err
		}
	}
	return len(changes) > 0, nil
}

func formatChange(c *Colors, ch libdiff.Change) string {
	path := c.Path(libdiff.PathString(ch.Path))
	switch ch.Op {
	case libdiff.Insert:
		return c.Insert("+ ") + path + ": " + c.Insert(oneLine(ch.To))
	case libdiff.Delete:
		return c.Delete("- ") + path + ": " + c.Delete(oneLine(ch.From))
	}
	if ch.Spans != nil {
		return c.Replace("~ ") + path + ": " + formatSpans(c, ch.Spans)
	}
	return c.Replace("~ ") + path + ": " + c.Delete(oneLine(ch.From)) + " -> " + c.Insert(oneLine(ch.To))
}

func formatSpans(c *Colors, spans []libdiff.Span) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, s := range spans {
		switch s.Op {
		case libdiff.Added:
			sb.WriteString(c.Insert("{+" + s.Text + "+}"))
		case libdiff.Removed:
			sb.WriteString(c.Delete("[-" + s.Text + "-]"))
		default:
			sb.WriteString(s.Text)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func oneLine(v *value.Value) string {
	d, err := format.EncodeValue(format.JSONFormat, v)
	if err != nil {
		return v.Dump()
	}
	return strings.Join(strings.Fields(string(d)), " ")
}

// diffLines diffs the tree dumps of a and b.
func diffLines(p *format.Persister, c *Colors, w io.Writer, a, b *value.Value) (bool, error) {
	ta, err := p.ValueToTree("a", a)
	if err != nil {
		return false, err
	}
	tb, err := p.ValueToTree("b", b)
	if err != nil {
		return false, err
	}
	spans := libdiff.Lines(ta.String(), tb.String())
	for _, s := range spans {
		prefix, paint := "  ", c.Equal
		switch s.Op {
		case libdiff.Added:
			prefix, paint = "+ ", c.Insert
		case libdiff.Removed:
			prefix, paint = "- ", c.Delete
		}
		for _, line := range strings.SplitAfter(s.Text, "\n") {
			if line == "" {
				continue
			}
			if _, err := io.WriteString(w, paint(prefix+line)); err != nil {
				return false, err
			}
		}
	}
	return libdiff.Changed(spans), nil
}
