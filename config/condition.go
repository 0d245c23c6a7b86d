package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
)

// Flatten returns the values of the properties of t as nested maps keyed
// by node id, the environment seen by expression conditions.
func Flatten(t *Tree) map[string]any {
	res := make(map[string]any, t.Len())
	for _, k := range t.keys {
		switch n := t.nodes[k].(type) {
		case *Tree:
			res[k] = Flatten(n)
		case AnyProperty:
			res[k] = n.Value()
		}
	}
	return res
}

func exprOpts(t *Tree) []expr.Option {
	return []expr.Option{
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
		expr.Function("getpath", func(params ...any) (any, error) {
			path := params[0].(string)
			p := t.GetProperty(strings.Split(path, ".")...)
			if p == nil {
				return nil, fmt.Errorf("no property at %q", path)
			}
			return p.Value(), nil
		},
			new(func(string) any)),
		expr.Function("visible", func(params ...any) (any, error) {
			path := params[0].(string)
			p := t.GetProperty(strings.Split(path, ".")...)
			return p != nil && p.CanDisplay(), nil
		},
			new(func(string) bool)),
	}
}

// ExprCondition compiles source into a display condition evaluated
// against the current property values of t, for example
//
//	p.AddDisplayCondition(cond)
//
// where source is `hud.enabled && hud.scale > 1`. Identifiers resolve
// through Flatten(t); getpath("a.b") and visible("a.b") are also
// available. An evaluation error makes the condition false.
func ExprCondition(t *Tree, source string) (func() bool, error) {
	prg, err := expr.Compile(source, exprOpts(t)...)
	if err != nil {
		return nil, fmt.Errorf("display condition %q: %w", source, err)
	}
	return func() bool {
		res, err := expr.Run(prg, Flatten(t))
		if err != nil {
			slog.Warn("display condition failed", "condition", source, "error", err)
			return false
		}
		ok, _ := res.(bool)
		return ok
	}, nil
}
