// Package resilience provides the failure-handling controls the
// instrumentation layer wraps around network calls.
//
// Breaker is a three-state circuit breaker (Closed -> Open -> HalfOpen ->
// Closed) that stops issuing calls to a failing dependency after a run of
// consecutive failures and probes for recovery with a single trial call
// after a cool-down. Rejections surface as ErrOpen, a distinct error kind,
// so callers can apply a different retry policy to a tripped circuit than
// to a genuine call failure.
//
// Retry wraps an operation with exponential backoff. Its default policy
// refuses to retry ErrOpen: hammering an open circuit only resets its
// cool-down.
package resilience
