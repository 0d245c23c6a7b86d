// Package config provides the configuration data model: a hierarchy of
// [Tree] nodes whose leaves are typed [Property] values.
//
// A property carries change callbacks and display conditions; a tree is
// an ordered set of children addressed by id or by a path of ids.
// [DeepEquals], [Merge] and [Tree.String] operate on whole hierarchies.
//
// Persisting a tree is the job of the format package, which converts
// property values through the codec package.
package config
