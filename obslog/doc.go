// Package obslog produces the structured, correlated, redacted log entries
// the rest of the toolkit emits.
//
// A Logger stamps every entry with the service name, the correlation and
// transaction ids visible in the active corr scope, and runs the payload
// through a mask.Engine before serialization, so sensitive fields never
// reach a sink unredacted. Logging is best-effort: a Logger never panics
// and never blocks its caller on the physical write.
//
// A Buffer decouples entry production from writing. When the buffer is at
// its high-water mark, entries below the configured severity are dropped;
// entries at or above it wait a bounded time for a slot and then fall back
// to a forced synchronous write.
package obslog
