package instrument

import "errors"

var (
	// ErrMissingName indicates a client was configured without an instance
	// name.
	ErrMissingName = errors.New("instrument: instance name is required")

	// ErrMissingAdapter indicates a client was configured without a backing
	// adapter.
	ErrMissingAdapter = errors.New("instrument: adapter is required")

	// ErrDuplicateInstance indicates a registry already holds an instance
	// under that name.
	ErrDuplicateInstance = errors.New("instrument: instance already registered")

	// ErrUnknownInstance indicates no instance is registered under that
	// name.
	ErrUnknownInstance = errors.New("instrument: unknown instance")
)
