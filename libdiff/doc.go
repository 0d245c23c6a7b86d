// Package libdiff computes, reverses and applies differences between
// value trees, and diffs text by characters or lines.
package libdiff
