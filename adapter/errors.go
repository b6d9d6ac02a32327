package adapter

import "errors"

var (
	// ErrAlreadySettled is returned when a message is acked or nacked a
	// second time.
	ErrAlreadySettled = errors.New("adapter: message already settled")

	// ErrNotConnected is returned by broker operations before Connect.
	ErrNotConnected = errors.New("adapter: broker not connected")
)
