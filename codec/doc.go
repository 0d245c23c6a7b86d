// Package codec converts arbitrary Go values to and from [value.Value]
// trees.
//
// Structs are written as maps tagged with their class name:
//
//	{"class": "example.com/app.Profile", "name": "Alice", "age": 30}
//
// Named scalars, enums and adapter results that are not maps are wrapped
// as {"class": ..., "value": ...}. Slices and arrays become lists; maps
// become maps with their keys in sorted order.
//
// Decoding without a destination type needs every class name to be
// resolvable, either as a predeclared type or through [Register] and
// [RegisterEnum] on the codec's [Types]. Decoding into a declared
// destination uses that type instead and only requires the class tag on
// structs.
//
// Struct fields are controlled with the "config" tag, see [TagName].
package codec
