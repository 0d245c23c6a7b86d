package adapter

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/polyfrost/go-oneconfig/value"
)

type point struct{ X, Y int }

func pointAdapter(tag string) Adapter {
	return Func(
		func(p point) (*value.Value, error) {
			return value.FromString(tag), nil
		},
		func(v *value.Value) (point, error) {
			return point{}, nil
		},
	)
}

func newTestRegistry(buf *bytes.Buffer) *Registry {
	return NewRegistry(WithLogger(slog.New(slog.NewTextHandler(buf, nil))))
}

func TestRegisterFirstWins(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRegistry(&buf)

	if !r.Register(pointAdapter("first")) {
		t.Fatal("expected first registration to succeed")
	}
	if r.Register(pointAdapter("second")) {
		t.Fatal("expected second registration to be rejected")
	}
	if !strings.Contains(buf.String(), "already registered") {
		t.Errorf("expected warning, got %q", buf.String())
	}

	a, ok := r.Lookup(reflect.TypeFor[point]())
	if !ok {
		t.Fatal("expected adapter")
	}
	v, err := a.Serialize(point{})
	if err != nil {
		t.Fatal(err)
	}
	if v.String != "first" {
		t.Errorf("expected first adapter to win, got %q", v.String)
	}
}

func TestLookupExactTypeOnly(t *testing.T) {
	r := NewRegistry()
	r.Register(pointAdapter("p"))

	if _, ok := r.Lookup(reflect.TypeFor[*point]()); ok {
		t.Error("pointer type must not match")
	}
	type namedPoint point
	if _, ok := r.Lookup(reflect.TypeFor[namedPoint]()); ok {
		t.Error("named type with same underlying type must not match")
	}
	if _, ok := r.Lookup(nil); ok {
		t.Error("nil type must not match")
	}
}

func TestUnregister(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRegistry(&buf)
	a := pointAdapter("p")
	r.Register(a)

	if !r.Unregister(a) {
		t.Fatal("expected unregister to succeed")
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
	if r.Unregister(a) {
		t.Fatal("expected second unregister to fail")
	}
	if !strings.Contains(buf.String(), "nothing to unregister") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestConcurrentRegister(t *testing.T) {
	r := NewRegistry(WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Register(pointAdapter("p")) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if won != 1 {
		t.Errorf("expected exactly one winner, got %d", won)
	}
}

func TestBuiltins(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)
	if r.Len() != 3 {
		t.Fatalf("expected 3 builtin adapters, got %d", r.Len())
	}

	c := Color{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	v, err := ColorAdapter.Serialize(c)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != value.Uint32 || v.Uint != 0xff123456 {
		t.Errorf("unexpected color value %s", v.Dump())
	}
	back, err := ColorAdapter.Deserialize(v)
	if err != nil {
		t.Fatal(err)
	}
	if back.(Color) != c {
		t.Errorf("expected %v, got %v", c, back)
	}

	d, err := DurationAdapter.Deserialize(value.FromString("1m30s"))
	if err != nil {
		t.Fatal(err)
	}
	if d.(time.Duration) != 90*time.Second {
		t.Errorf("expected 90s, got %v", d)
	}
	if _, err := DurationAdapter.Deserialize(value.FromInt(3)); err == nil {
		t.Error("expected error for numeric duration")
	}

	if _, err := ColorAdapter.Serialize("not a color"); err == nil {
		t.Error("expected error for wrong dynamic type")
	}
}
