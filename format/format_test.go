package format

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/polyfrost/go-oneconfig/adapter"
	"github.com/polyfrost/go-oneconfig/codec"
	"github.com/polyfrost/go-oneconfig/config"
	"github.com/polyfrost/go-oneconfig/value"
)

type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

type position struct {
	X, Y int
}

func testCodec(t *testing.T) *codec.Codec {
	t.Helper()
	reg := adapter.NewRegistry()
	adapter.RegisterBuiltins(reg)
	types := codec.NewTypes()
	if err := codec.RegisterEnum(types, ThemeLight, ThemeDark); err != nil {
		t.Fatal(err)
	}
	if err := codec.Register[position](types); err != nil {
		t.Fatal(err)
	}
	return codec.New(reg, types)
}

func sampleTree() *config.Tree {
	return config.NewTreeFrom("settings",
		config.NewProperty("name", "main"),
		config.NewProperty("volume", 80),
		config.NewTreeFrom("hud",
			config.NewProperty("enabled", true),
			config.NewProperty("scale", 1.5),
			config.NewProperty("color", adapter.Color{R: 255, A: 255}),
			config.NewProperty("pos", position{X: 3, Y: 4}),
			config.NewProperty("theme", ThemeDark),
		),
		config.NewProperty("tags", []string{"a", "b"}),
		config.NewProperty("delay", 250*time.Millisecond),
		config.NewProperty("limits", map[string]int{"fps": 60, "ping": 100}),
	)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSONFormat, false},
		{"YAML", YAMLFormat, false},
		{"yml", YAMLFormat, false},
		{"t", TOMLFormat, false},
		{"hocon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrBadFormat) {
				t.Errorf("%q: expected ErrBadFormat, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %v, %v", tt.in, got, err)
		}
	}
	if f, err := ForPath("/etc/app/config.toml"); err != nil || f != TOMLFormat {
		t.Errorf("ForPath: %v %v", f, err)
	}
	if _, err := ForPath("Makefile"); err == nil {
		t.Error("expected error for path without extension")
	}
}

func TestSupports(t *testing.T) {
	b, err := New(YAMLFormat, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Supports("a/b.yaml") || !b.Supports("c.yml") || b.Supports("c.json") {
		t.Error("unexpected Supports result")
	}
}

func TestRoundTripAllFormats(t *testing.T) {
	c := testCodec(t)
	for _, f := range AllFormats() {
		t.Run(f.String(), func(t *testing.T) {
			b, err := New(f, c)
			if err != nil {
				t.Fatal(err)
			}
			data, err := b.Serialize(sampleTree())
			if err != nil {
				t.Fatal(err)
			}
			loaded, err := b.Deserialize("settings", data)
			if err != nil {
				t.Fatalf("%v\n%s", err, data)
			}
			if got := loaded.GetProperty("hud", "pos").Value(); got != (position{X: 3, Y: 4}) {
				t.Errorf("pos: %#v", got)
			}
			if got := loaded.GetProperty("hud", "theme").Value(); got != ThemeDark {
				t.Errorf("theme: %#v", got)
			}
			if got := loaded.GetProperty("hud", "color").Value(); got != (adapter.Color{R: 255, A: 255}) {
				t.Errorf("color: %#v", got)
			}
			if got := loaded.GetProperty("delay").Value(); got != 250*time.Millisecond {
				t.Errorf("delay: %#v", got)
			}
			if diff := cmp.Diff([]string{"a", "b"}, loaded.GetProperty("tags").Value()); diff != "" {
				t.Errorf("tags (-want +got):\n%s", diff)
			}
			if loaded.GetTree("limits") != nil {
				t.Fatal("map property loaded as a tree")
			}
			if !config.DeepEquals(loaded.Get("limits"), sampleTree().Get("limits")) {
				t.Errorf("limits: %#v", loaded.GetProperty("limits").Value())
			}

			dst := sampleTree()
			dst.GetProperty("volume").SetAny(10)
			if err := LoadInto(f, c, dst, data); err != nil {
				t.Fatal(err)
			}
			if !config.DeepEquals(dst, sampleTree()) {
				t.Errorf("LoadInto did not restore the tree:\n%s", dst)
			}
		})
	}
}

func TestJSONOrderAndNumbers(t *testing.T) {
	in := `{"z": 1, "a": {"y": 2.0, "b": 18446744073709551615}, "m": [null, true, "s"]}`
	v, err := DecodeValue(JSONFormat, []byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, v.Keys()); diff != "" {
		t.Errorf("top keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"y", "b"}, v.Get("a").Keys()); diff != "" {
		t.Errorf("nested keys (-want +got):\n%s", diff)
	}
	if k := v.Get("a").Get("y").Kind; k != value.Float64 {
		t.Errorf("2.0 should stay a float, got %s", k)
	}
	if b := v.Get("a").Get("b"); b.Kind != value.Uint64 || b.Uint != 1<<64-1 {
		t.Errorf("large integer lost precision: %s", b.Dump())
	}

	out, err := EncodeValue(JSONFormat, v)
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeValue(JSONFormat, out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(v.Dump(), back.Dump()); diff != "" {
		t.Errorf("re-encode (-want +got):\n%s", diff)
	}

	if _, err := DecodeValue(JSONFormat, []byte(`{"a": 1} {}`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestYAMLOrder(t *testing.T) {
	in := "zeta: 1\nalpha:\n  second: x\n  first: [1, 2]\n"
	v, err := DecodeValue(YAMLFormat, []byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, v.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"second", "first"}, v.Get("alpha").Keys()); diff != "" {
		t.Errorf("nested keys (-want +got):\n%s", diff)
	}
	if k := v.Get("zeta").Kind; k != value.Int64 {
		t.Errorf("zeta kind %s", k)
	}
	out, err := EncodeValue(YAMLFormat, v)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(string(out), "zeta") > strings.Index(string(out), "alpha") {
		t.Errorf("YAML output reordered keys:\n%s", out)
	}
}

func TestTOMLOrderAndNull(t *testing.T) {
	in := "title = \"x\"\nport = 8080\n\n[server]\nhost = \"h\"\nalias = \"a\"\n"
	v, err := DecodeValue(TOMLFormat, []byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"title", "port", "server"}, v.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"host", "alias"}, v.Get("server").Keys()); diff != "" {
		t.Errorf("table keys (-want +got):\n%s", diff)
	}

	withNull := value.FromKeyVals([]value.KeyVal{
		{Key: "a", Val: value.FromInt(1)},
		{Key: "gone", Val: value.Null()},
	})
	out, err := EncodeValue(TOMLFormat, withNull)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "gone") {
		t.Errorf("null entry written to TOML:\n%s", out)
	}

	nullElem := value.FromKeyVals([]value.KeyVal{
		{Key: "xs", Val: value.FromSlice([]*value.Value{value.FromInt(1), value.Null(), value.FromInt(3)})},
	})
	_, err = EncodeValue(TOMLFormat, nullElem)
	if !errors.Is(err, ErrTOMLNull) {
		t.Fatalf("expected ErrTOMLNull, got %v", err)
	}
	if !strings.Contains(err.Error(), "xs[1]") {
		t.Errorf("error should name the element: %v", err)
	}
}

func TestUntaggedMapsAreTrees(t *testing.T) {
	tree, err := NewPersister(nil).ValueToTree("root", value.FromKeyVals([]value.KeyVal{
		{Key: "sub", Val: value.FromKeyVals([]value.KeyVal{{Key: "n", Val: value.FromInt(1)}})},
		{Key: "empty", Val: value.FromSlice(nil)},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if tree.GetTree("sub") == nil {
		t.Error("untagged map should load as a tree")
	}
	if diff := cmp.Diff([]any{}, tree.GetProperty("empty").Value()); diff != "" {
		t.Errorf("empty list (-want +got):\n%s", diff)
	}
}

func TestUnknownClassIsAnError(t *testing.T) {
	_, err := NewPersister(nil).ValueToTree("root", value.FromKeyVals([]value.KeyVal{
		{Key: "x", Val: value.FromKeyVals([]value.KeyVal{{Key: "class", Val: value.FromString("MissingType")}})},
	}))
	if !errors.Is(err, codec.ErrClassResolution) {
		t.Errorf("expected ErrClassResolution, got %v", err)
	}
}

func TestApplyMismatch(t *testing.T) {
	dst := config.NewTreeFrom("root", config.NewTreeFrom("hud"))
	err := NewPersister(nil).ApplyValue(dst, value.FromKeyVals([]value.KeyVal{
		{Key: "hud", Val: value.FromInt(1)},
	}))
	if !errors.Is(err, config.ErrStructuralMismatch) {
		t.Errorf("expected ErrStructuralMismatch, got %v", err)
	}

	typed := config.NewTreeFrom("root", config.NewProperty("n", int8(0)))
	err = NewPersister(nil).ApplyValue(typed, value.FromKeyVals([]value.KeyVal{
		{Key: "n", Val: value.FromInt(1000)},
	}))
	if !errors.Is(err, codec.ErrFieldAccess) {
		t.Errorf("expected ErrFieldAccess for overflow, got %v", err)
	}
}

func TestPatch(t *testing.T) {
	c := testCodec(t)
	tree := sampleTree()
	patched, err := Patch(tree, []byte(`[
		{"op": "replace", "path": "/volume", "value": 5},
		{"op": "add", "path": "/hud/extra", "value": "new"},
		{"op": "remove", "path": "/tags"}
	]`), c)
	if err != nil {
		t.Fatal(err)
	}
	if got := patched.GetProperty("volume").Value(); got != int64(5) {
		t.Errorf("volume: %#v", got)
	}
	if patched.Get("tags") != nil {
		t.Error("tags should be removed")
	}
	want := []string{"enabled", "scale", "color", "pos", "theme", "extra"}
	if diff := cmp.Diff(want, patched.GetTree("hud").Keys()); diff != "" {
		t.Errorf("hud keys (-want +got):\n%s", diff)
	}

	if _, err := Patch(tree, []byte(`[{"op": "bogus", "path": "/volume"}]`), c); err == nil {
		t.Error("expected error for an unknown patch operation")
	}
}

func TestMergePatch(t *testing.T) {
	tree := config.NewTreeFrom("root", config.NewProperty("a", 1), config.NewProperty("b", "x"))
	patched, err := MergePatch(tree, []byte(`{"b": null, "c": true}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, patched.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}
