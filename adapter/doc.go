// Package adapter provides the registry of per-type converters consulted by
// the object codec before it falls back to reflection.
//
// An adapter is registered for one exact Go type:
//
//	reg := adapter.NewRegistry()
//	adapter.RegisterBuiltins(reg)
//	reg.Register(adapter.Func(
//	    func(p Point) (*value.Value, error) { ... },
//	    func(v *value.Value) (Point, error) { ... },
//	))
//
// The first adapter registered for a type wins; later registrations are
// rejected with a warning. Lookups match the exact type only, never an
// interface it implements or its underlying type.
//
// A Registry is safe for concurrent use.
package adapter
