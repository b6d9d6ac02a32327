// Package adapter defines the capability contract concrete network clients
// satisfy to be instrumented.
//
// Each HTTP or broker client library is wrapped once in an HTTPAdapter or
// BrokerAdapter implementation that translates its native request, response,
// and error shapes into the canonical envelopes here. Nothing
// library-specific crosses the adapter boundary: adapters normalize every
// native failure into *Error before returning it.
package adapter
