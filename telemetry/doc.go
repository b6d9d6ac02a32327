// Package telemetry wires up OpenTelemetry tracing and metrics for services
// built on this module.
//
// New installs the configured trace and meter providers globally and
// registers the W3C trace context and baggage propagators, so instrumented
// clients configured for trace propagation emit interoperable headers.
// Logging is deliberately not part of this package; see obslog.
package telemetry
