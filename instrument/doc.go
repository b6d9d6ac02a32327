// Package instrument wraps adapter-backed network clients with correlation
// injection, timing, masking, error normalization, and resilience controls.
//
// An HTTPClient or BrokerClient reads the active corr scope before every
// outbound call (generating a fresh correlation id when no scope is open),
// injects the ids into request headers or message metadata, times the call
// through a per-instance circuit breaker, and emits one structured log
// entry per operation with the payload already masked.
//
// On the inbound side, a BrokerClient subscription extracts correlation
// metadata from each message and opens a new corr scope around the user
// handler, so all logging inside the handler is correlated to the original
// producer. A handler that fails or panics is nacked without requeue on its
// behalf, exactly once; successful handlers ack explicitly.
package instrument
