package config

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeGet(t *testing.T) {
	root := NewTreeFrom("root",
		NewProperty("name", "main"),
		NewTreeFrom("hud",
			NewProperty("enabled", true),
			NewProperty("scale", 1.5),
		),
	)
	if got := root.GetProperty("hud", "scale"); got == nil || got.Value() != 1.5 {
		t.Errorf("hud.scale: got %v", got)
	}
	if got := root.GetTree("hud"); got == nil || got.ID() != "hud" {
		t.Errorf("hud: got %v", got)
	}
	if got := root.Get("name", "x"); got != nil {
		t.Errorf("path through property should be nil, got %v", got)
	}
	if got := root.Get("missing"); got != nil {
		t.Errorf("missing key should be nil, got %v", got)
	}
	if root.Get() != Node(root) {
		t.Error("empty path should return the tree itself")
	}
	if got := root.GetTree("name"); got != nil {
		t.Error("GetTree on a property should be nil")
	}
}

func TestTreePutOrder(t *testing.T) {
	tr := NewTreeFrom("t", NewProperty("a", 1), NewProperty("b", 2), NewProperty("c", 3))
	tr.Put(NewProperty("a", 10))
	if diff := cmp.Diff([]string{"a", "b", "c"}, tr.Keys()); diff != "" {
		t.Errorf("replace should keep position (-want +got):\n%s", diff)
	}
	if got := tr.GetProperty("a").Value(); got != 10 {
		t.Errorf("a: got %v", got)
	}
	if !tr.Remove("b") || tr.Remove("b") {
		t.Error("Remove should report presence")
	}
	if diff := cmp.Diff([]string{"a", "c"}, tr.Keys()); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}
}

func TestTreeVisit(t *testing.T) {
	root := NewTreeFrom("root",
		NewTreeFrom("a", NewProperty("x", 1), NewTreeFrom("deep", NewProperty("y", 2))),
		NewTreeFrom("skip", NewProperty("z", 3)),
		NewProperty("b", "s"),
	)
	var paths []string
	err := root.Visit(func(path []string, n Node) error {
		paths = append(paths, strings.Join(path, "."))
		if n.ID() == "skip" {
			return SkipTree
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "a.x", "a.deep", "a.deep.y", "skip", "b"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("visit order (-want +got):\n%s", diff)
	}
}

func TestPropertyCallbacks(t *testing.T) {
	p := NewProperty("volume", 5)
	var got []int
	sub := p.AddCallback(func(v int) { got = append(got, v) })
	p.Set(6)
	p.Set(6)
	sub.Unsubscribe()
	p.Set(7)
	if diff := cmp.Diff([]int{6}, got); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	if p.Get() != 7 {
		t.Errorf("got %d", p.Get())
	}
}

func TestPropertyIdentity(t *testing.T) {
	type point struct{ X, Y int }
	shared := []int{1, 2}

	tests := []struct {
		name  string
		run   func(fire func())
		fires int
	}{
		{
			name: "same slice",
			run: func(fire func()) {
				p := NewProperty("s", shared)
				p.AddCallback(func([]int) { fire() })
				p.Set(shared)
			},
			fires: 0,
		},
		{
			name: "equal but distinct slice",
			run: func(fire func()) {
				p := NewProperty("s", shared)
				p.AddCallback(func([]int) { fire() })
				p.Set([]int{1, 2})
			},
			fires: 1,
		},
		{
			name: "same pointer",
			run: func(fire func()) {
				pt := &point{1, 2}
				p := NewProperty("p", pt)
				p.AddCallback(func(*point) { fire() })
				pt.X = 3
				p.Set(pt)
			},
			fires: 0,
		},
		{
			name: "equal struct value",
			run: func(fire func()) {
				p := NewProperty("p", point{1, 2})
				p.AddCallback(func(point) { fire() })
				p.Set(point{1, 2})
				p.Set(point{2, 2})
			},
			fires: 1,
		},
		{
			name: "any holding same map",
			run: func(fire func()) {
				m := map[string]int{"a": 1}
				p := NewProperty[any]("m", m)
				p.AddCallback(func(any) { fire() })
				p.Set(m)
				p.Set(map[string]int{"a": 1})
			},
			fires: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 0
			tt.run(func() { n++ })
			if n != tt.fires {
				t.Errorf("callbacks fired %d times, want %d", n, tt.fires)
			}
		})
	}
}

func TestPropertySetAny(t *testing.T) {
	p := NewProperty("n", 1)
	if err := p.SetAny(2); err != nil {
		t.Fatal(err)
	}
	if err := p.SetAny("two"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if err := p.SetAny(nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for nil int, got %v", err)
	}
	ps := NewProperty("s", []string{"a"})
	if err := ps.SetAny(nil); err != nil || ps.Get() != nil {
		t.Errorf("nil slice: err %v, value %v", err, ps.Get())
	}
}

func TestPropertyTypeInfo(t *testing.T) {
	tests := []struct {
		p         AnyProperty
		array     bool
		primitive bool
		typ       string
	}{
		{NewProperty("i", 1), false, true, "int"},
		{NewProperty("a", []int{1}), true, false, "[]int"},
		{NewProperty("f", [3]float32{}), true, false, "[3]float32"},
		{NewProperty[any]("d", "dyn"), false, true, "string"},
		{NewProperty[any]("n", nil), false, false, "interface {}"},
		{NewProperty("m", map[string]int{}), false, false, "map[string]int"},
	}
	for _, tt := range tests {
		if tt.p.IsArray() != tt.array || tt.p.IsPrimitive() != tt.primitive || tt.p.Type().String() != tt.typ {
			t.Errorf("%s: array=%v primitive=%v type=%s", tt.p.ID(), tt.p.IsArray(), tt.p.IsPrimitive(), tt.p.Type())
		}
	}
}

func TestDisplayConditions(t *testing.T) {
	p := NewProperty("x", 1)
	if !p.CanDisplay() {
		t.Fatal("no conditions should display")
	}
	show := true
	sub := p.AddDisplayCondition(func() bool { return show })
	if !p.CanDisplay() {
		t.Error("condition true")
	}
	show = false
	if !p.CanDisplay() {
		t.Error("cached value should not change before Revaluate")
	}
	p.Revaluate()
	if p.CanDisplay() {
		t.Error("condition false after Revaluate")
	}
	sub.Unsubscribe()
	if !p.CanDisplay() {
		t.Error("removing the condition should recompute")
	}
	p.AddDisplayCondition(func() bool { return false })
	p.ClearDisplayConditions()
	if !p.CanDisplay() {
		t.Error("cleared conditions should display")
	}
}

func TestConcurrentCallbacks(t *testing.T) {
	p := NewProperty("n", 0)
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := p.AddCallback(func(int) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			if i%2 == 0 {
				sub.Unsubscribe()
			}
		}()
		go func() {
			defer wg.Done()
			p.Set(i + 1)
		}()
	}
	wg.Wait()
	t.Logf("%d callbacks fired", count)
	p.ClearCallbacks()
	p.Set(-1)
}

func TestMeta(t *testing.T) {
	var m Meta
	if m.Remove("absent") {
		t.Error("removing an absent key should report false")
	}
	m.Set("b", 1)
	m.Set("a", "x")
	if diff := cmp.Diff([]string{"a", "b"}, m.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	var o Meta
	o.Set("a", "y")
	o.Set("c", true)
	m.CopyFrom(&o)
	if v, _ := m.Get("a"); v != "y" || m.Len() != 3 {
		t.Errorf("after copy: a=%v len=%d", v, m.Len())
	}
}

func TestDeepEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{
			name: "int arrays distinct instances",
			a:    NewProperty("a", []int{1, 2, 3}),
			b:    NewProperty("a", []int{1, 2, 3}),
			want: true,
		},
		{
			name: "int arrays differing element",
			a:    NewProperty("a", []int{1, 2, 3}),
			b:    NewProperty("a", []int{1, 5, 3}),
			want: false,
		},
		{
			name: "fixed arrays",
			a:    NewProperty("a", [2]float64{1, 2}),
			b:    NewProperty("a", [2]float64{1, 2}),
			want: true,
		},
		{
			name: "object arrays",
			a:    NewProperty("a", []any{"x", []byte("y")}),
			b:    NewProperty("a", []any{"x", []byte("y")}),
			want: true,
		},
		{
			name: "different value types",
			a:    NewProperty("a", int32(1)),
			b:    NewProperty("a", int64(1)),
			want: false,
		},
		{
			name: "nested trees",
			a:    NewTreeFrom("r", NewTreeFrom("s", NewProperty("x", 1)), NewProperty("y", "z")),
			b:    NewTreeFrom("r", NewProperty("y", "z"), NewTreeFrom("s", NewProperty("x", 1))),
			want: true,
		},
		{
			name: "missing key",
			a:    NewTreeFrom("r", NewProperty("x", 1)),
			b:    NewTreeFrom("r", NewProperty("y", 1)),
			want: false,
		},
		{
			name: "tree versus property",
			a:    NewTreeFrom("r"),
			b:    NewProperty("r", 1),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeepEquals(tt.a, tt.b); got != tt.want {
				t.Errorf("DeepEquals = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeNested(t *testing.T) {
	dst := NewTreeFrom("root", NewTreeFrom("a", NewProperty("x", 1)))
	src := NewTreeFrom("root", NewTreeFrom("a", NewProperty("y", 2)))
	if err := Merge(dst, src, false, false); err != nil {
		t.Fatal(err)
	}
	want := NewTreeFrom("root", NewTreeFrom("a", NewProperty("x", 1), NewProperty("y", 2)))
	if !DeepEquals(dst, want) {
		t.Errorf("merge result:\n%s", dst)
	}
	if diff := cmp.Diff([]string{"x", "y"}, dst.GetTree("a").Keys()); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestMergeMonotonic(t *testing.T) {
	dst := NewTreeFrom("root",
		NewProperty("keep", "dst"),
		NewTreeFrom("sub", NewProperty("n", 1)),
	)
	kept := dst.GetProperty("keep")
	kept.Meta().Set("comment", "old")

	incoming := NewProperty("keep", "src")
	incoming.Meta().Set("comment", "new")
	incoming.Meta().Set("since", 2)
	src := NewTreeFrom("root",
		incoming,
		NewTreeFrom("sub", NewProperty("n", 99), NewProperty("m", 2)),
		NewProperty("only", true),
	)
	if err := Merge(dst, src, false, false); err != nil {
		t.Fatal(err)
	}
	if got := dst.GetProperty("keep").Value(); got != "dst" {
		t.Errorf("keep overwritten: %v", got)
	}
	if got := dst.GetProperty("sub", "n").Value(); got != 1 {
		t.Errorf("sub.n overwritten: %v", got)
	}
	for _, path := range [][]string{{"only"}, {"sub", "m"}} {
		if dst.Get(path...) == nil {
			t.Errorf("missing %v", path)
		}
	}
	if v, _ := kept.Meta().Get("since"); v != 2 {
		t.Errorf("src metadata not merged into dst: %v", kept.Meta().Keys())
	}
}

func TestMergeOverwrite(t *testing.T) {
	old := NewProperty("k", 1)
	old.Meta().Set("comment", "keep me")
	dst := NewTreeFrom("root", old)
	src := NewTreeFrom("root", NewProperty("k", 2))

	if err := Merge(dst, src, true, true); err != nil {
		t.Fatal(err)
	}
	p := dst.GetProperty("k")
	if p.Value() != 2 {
		t.Errorf("k not overwritten: %v", p.Value())
	}
	if v, _ := p.Meta().Get("comment"); v != "keep me" {
		t.Errorf("metadata not copied onto incoming property: %v", v)
	}
}

func TestMergeLeavesSrcAlone(t *testing.T) {
	first := NewProperty("k", 1)
	first.Meta().Set("comment", "from first")
	src1 := NewTreeFrom("root", first, NewTreeFrom("sub", NewProperty("n", 1)))
	src2 := NewTreeFrom("root", NewProperty("k", 2))
	src2.GetProperty("k").Meta().Set("comment", "from second")

	dst := NewTree("root")
	if err := Merge(dst, src1, true, true); err != nil {
		t.Fatal(err)
	}
	if dst.GetProperty("k") == AnyProperty(first) || dst.GetTree("sub") == src1.GetTree("sub") {
		t.Fatal("merged nodes shared with src")
	}
	if err := Merge(dst, src2, true, true); err != nil {
		t.Fatal(err)
	}
	if got := dst.GetProperty("k").Value(); got != 2 {
		t.Errorf("k: %v", got)
	}
	if v, _ := dst.GetProperty("k").Meta().Get("comment"); v != "from first" {
		t.Errorf("dst metadata not carried over: %v", v)
	}
	if v, _ := src2.GetProperty("k").Meta().Get("comment"); v != "from second" {
		t.Errorf("src metadata modified: %v", v)
	}
	if got := first.Value(); got != 1 {
		t.Errorf("first src property modified: %v", got)
	}

	dst.GetTree("sub").Put(NewProperty("extra", true))
	if src1.GetTree("sub").Get("extra") != nil {
		t.Error("adding to a merged tree changed src")
	}
}

func TestClone(t *testing.T) {
	p := NewProperty("n", 3)
	p.Meta().Set("comment", "c")
	fired := false
	p.AddCallback(func(int) { fired = true })
	root := NewTreeFrom("root", p, NewTreeFrom("sub", NewProperty("s", "x")))
	root.Meta().Set("version", 1)

	c := root.Clone()
	if !DeepEquals(root, c) {
		t.Fatalf("clone differs:\n%s", c)
	}
	if v, _ := c.Meta().Get("version"); v != 1 {
		t.Errorf("tree metadata: %v", v)
	}
	cp := c.GetProperty("n").(*Property[int])
	if v, _ := cp.Meta().Get("comment"); v != "c" {
		t.Errorf("property metadata: %v", v)
	}
	cp.Set(4)
	if fired {
		t.Error("callbacks carried over to the clone")
	}
	if p.Get() != 3 {
		t.Errorf("original changed: %v", p.Get())
	}
}

func TestMergeMismatch(t *testing.T) {
	dst := NewTreeFrom("root", NewTreeFrom("a", NewProperty("x", 1)))
	src := NewTreeFrom("root", NewTreeFrom("a", NewTreeFrom("x")))
	err := Merge(dst, src, true, false)
	if !errors.Is(err, ErrStructuralMismatch) {
		t.Fatalf("expected ErrStructuralMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "a.x") {
		t.Errorf("error should name the path: %v", err)
	}
}

func TestTreeString(t *testing.T) {
	root := NewTreeFrom("root", NewProperty("name", "x"), NewTreeFrom("sub", NewProperty("n", 1)))
	want := "root {\n" +
		"  name: \"x\" (string)\n" +
		"  sub {\n" +
		"    n: 1 (int)\n" +
		"  }\n" +
		"}\n"
	if diff := cmp.Diff(want, root.String()); diff != "" {
		t.Errorf("String (-want +got):\n%s", diff)
	}
}

func TestExprCondition(t *testing.T) {
	root := NewTreeFrom("root",
		NewTreeFrom("hud", NewProperty("enabled", true), NewProperty("scale", 1.0)),
	)
	scale := NewProperty("opacity", 0.5)
	root.GetTree("hud").Put(scale)

	cond, err := ExprCondition(root, `hud.enabled && getpath("hud.scale") > 1`)
	if err != nil {
		t.Fatal(err)
	}
	sub := scale.AddDisplayCondition(cond)
	defer sub.Unsubscribe()
	if scale.CanDisplay() {
		t.Error("scale is 1, condition should be false")
	}
	root.GetProperty("hud", "scale").SetAny(2.0)
	scale.Revaluate()
	if !scale.CanDisplay() {
		t.Error("scale is 2, condition should be true")
	}

	if _, err := ExprCondition(root, `hud.enabled &&`); err == nil {
		t.Error("expected compile error")
	}
}

func TestFlatten(t *testing.T) {
	root := NewTreeFrom("root", NewProperty("a", 1), NewTreeFrom("b", NewProperty("c", "d")))
	want := map[string]any{"a": 1, "b": map[string]any{"c": "d"}}
	if diff := cmp.Diff(want, Flatten(root)); diff != "" {
		t.Errorf("Flatten (-want +got):\n%s", diff)
	}
}
