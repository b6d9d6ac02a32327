// Package mask redacts sensitive leaf values in arbitrarily nested data.
//
// An Engine owns a priority-ordered rule list. Process flattens its input
// into (path, leaf) pairs, applies the first matching rule to each leaf, and
// rebuilds the original shape, so cost is linear in the number of leaves
// regardless of nesting depth. Maps and slices come back with the same keys
// and lengths; structs come back in their map form.
//
// Process is a silent observer: it never panics and never returns an error.
// Any internal failure is reported through the configured OnError hook and
// the input is returned unchanged.
//
// Rule patterns are checked at AddRule time. Patterns that nest unbounded
// repetitions, or that exceed the size bound, are rejected with
// ErrUnsafePattern before any data is ever processed with them.
package mask
