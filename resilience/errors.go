package resilience

import "errors"

var (
	// ErrOpen is returned when the breaker rejects a call without issuing
	// it. It is distinguishable from a genuine call failure so callers can
	// treat the two differently.
	ErrOpen = errors.New("resilience: circuit open")

	// ErrProbeInFlight is returned while the half-open trial call is
	// still running.
	ErrProbeInFlight = errors.New("resilience: recovery probe in flight")
)
