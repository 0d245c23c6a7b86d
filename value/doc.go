// Package value provides the universal value tree that all persisted
// configuration data reduces to.
//
// # Overview
//
// A Value is a closed tagged union:
//
//   - NullType: null
//   - BoolType: boolean
//   - NumberType: integer or float, with the producing Go Kind recorded
//   - StringType: text
//   - ListType: ordered list of values
//   - MapType: ordered map from text keys to values
//
// Values form finite trees; nothing in this package creates cycles.
//
// # Numbers
//
// Numbers keep the Go numeric Kind they were created from so that a
// round trip through the object codec restores the exact type:
//
//	n := value.FromIntKind(7, value.Int16)
//	n.Any() // int16(7)
//
// Signed kinds use the Int field, unsigned kinds the Uint field and
// float kinds the Float field.
//
// # Maps
//
// Map keys and values are kept in parallel Fields and Values slices so
// insertion order survives a round trip. Use Get, Set and Delete rather
// than manipulating the slices directly:
//
//	m := value.NewMap()
//	m.Set("class", value.FromString("example.Color"))
//	m.Set("value", value.FromIntKind(-1, value.Int32))
//
// # Thread Safety
//
// Values are not safe for concurrent mutation.
//
// # Related Packages
//
//   - github.com/polyfrost/go-oneconfig/codec - Go objects to and from values
//   - github.com/polyfrost/go-oneconfig/format - values to and from text formats
package value
