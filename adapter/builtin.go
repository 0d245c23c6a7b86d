package adapter

import (
	"fmt"
	"time"

	"github.com/polyfrost/go-oneconfig/value"
)

// ColorAdapter persists a Color as a uint32 ARGB scalar.
var ColorAdapter = Func(
	func(c Color) (*value.Value, error) {
		return value.FromUint(uint64(c.ARGB()), value.Uint32), nil
	},
	func(v *value.Value) (Color, error) {
		u, ok := v.AsUint64()
		if !ok || u > 0xffffffff {
			return Color{}, fmt.Errorf("color must be a 32-bit unsigned number, got %s", v.Type)
		}
		return ColorFromARGB(uint32(u)), nil
	},
)

// DurationAdapter persists a time.Duration in time.ParseDuration syntax.
var DurationAdapter = Func(
	func(d time.Duration) (*value.Value, error) {
		return value.FromString(d.String()), nil
	},
	func(v *value.Value) (time.Duration, error) {
		if v.Type != value.StringType {
			return 0, fmt.Errorf("duration must be a string, got %s", v.Type)
		}
		return time.ParseDuration(v.String)
	},
)

// TimeAdapter persists a time.Time as RFC 3339 text.
var TimeAdapter = Func(
	func(t time.Time) (*value.Value, error) {
		return value.FromString(t.Format(time.RFC3339Nano)), nil
	},
	func(v *value.Value) (time.Time, error) {
		if v.Type != value.StringType {
			return time.Time{}, fmt.Errorf("time must be a string, got %s", v.Type)
		}
		return time.Parse(time.RFC3339Nano, v.String)
	},
)

// RegisterBuiltins registers the adapters shipped with this package.
func RegisterBuiltins(r *Registry) {
	r.Register(ColorAdapter)
	r.Register(DurationAdapter)
	r.Register(TimeAdapter)
}
