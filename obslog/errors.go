package obslog

import "errors"

var (
	// ErrMissingService indicates Config.Service is empty.
	ErrMissingService = errors.New("obslog: service name is required")

	// ErrBufferClosed indicates a write to a closed Buffer.
	ErrBufferClosed = errors.New("obslog: buffer closed")
)
