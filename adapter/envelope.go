package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Request is the adapter-agnostic outbound HTTP request shape.
type Request struct {
	URL         string
	Method      string
	Headers     map[string]string
	Body        any
	QueryParams map[string]string
	Timeout     time.Duration
}

// Response is the adapter-agnostic HTTP response shape.
type Response struct {
	StatusCode int
	Data       any
	Headers    map[string]string
}

// Error is the canonical failure envelope. Every concrete adapter translates
// its library-native error into one of these before it crosses the manager
// boundary; the native error survives only as wrapped cause and message.
type Error struct {
	Message        string
	IsAdapterError bool
	Request        *Request
	Response       *Response
	Err            error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "adapter: call failed"
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// Normalize wraps err into the canonical envelope. An err that already is an
// *Error passes through untouched, so normalization applied at several
// layers still wraps exactly once.
func Normalize(err error, req *Request) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Message:        fmt.Sprintf("adapter: %v", err),
		IsAdapterError: true,
		Request:        req,
		Err:            err,
	}
}

// HTTPAdapter is the single capability an HTTP client library exposes.
// Convenience verbs are built on top by the instrumentation layer.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Request must honor cancellation/deadlines; a cancellation or
//   timeout outcome is returned as a normalized *Error.
// - Errors: every native failure comes back as *Error.
type HTTPAdapter interface {
	Request(ctx context.Context, req *Request) (*Response, error)
}
