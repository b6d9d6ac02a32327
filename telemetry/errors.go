package telemetry

import "errors"

var (
	// ErrMissingServiceName indicates the configuration has no service
	// name.
	ErrMissingServiceName = errors.New("telemetry: service name is required")

	// ErrEndpointNotConfigured indicates an OTLP exporter was requested
	// without an endpoint in the environment.
	ErrEndpointNotConfigured = errors.New("telemetry: OTLP endpoint not configured")
)
