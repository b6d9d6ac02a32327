package mask

import "errors"

// Rule registration errors. All of them surface at AddRule time, never
// during Process.
var (
	// ErrInvalidPattern is returned when a rule pattern does not parse.
	ErrInvalidPattern = errors.New("mask: invalid rule pattern")

	// ErrUnsafePattern is returned when a rule pattern fails the
	// bounded-backtracking safety check.
	ErrUnsafePattern = errors.New("mask: unsafe rule pattern")

	// ErrNoMatcher is returned when a rule has no name, key pattern, or
	// value pattern.
	ErrNoMatcher = errors.New("mask: rule has no matcher")

	// ErrMissingCustomFunc is returned when a CUSTOM rule has no function.
	ErrMissingCustomFunc = errors.New("mask: custom rule requires a function")

	// ErrUnknownStrategy is returned for a strategy value outside the
	// defined set.
	ErrUnknownStrategy = errors.New("mask: unknown strategy")
)
