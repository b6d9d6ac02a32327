package corr

import (
	"context"
	"net/http"
)

// Inject writes the active scope's correlation and transaction ids into h
// under the configured header names. Absent ids are not written.
func (s *Store) Inject(ctx context.Context, h http.Header) {
	if id := s.CorrelationID(ctx); id != "" {
		h.Set(s.correlationHeader, id)
	}
	if id := s.TransactionID(ctx); id != "" {
		h.Set(s.transactionHeader, id)
	}
}

// InjectMap writes the active scope's correlation and transaction ids into a
// string-keyed metadata map, e.g. broker message headers.
func (s *Store) InjectMap(ctx context.Context, m map[string]string) {
	if id := s.CorrelationID(ctx); id != "" {
		m[s.correlationHeader] = id
	}
	if id := s.TransactionID(ctx); id != "" {
		m[s.transactionHeader] = id
	}
}

// Extract reads correlation and transaction ids from h under the configured
// header names. Missing headers yield "".
func (s *Store) Extract(h http.Header) (correlationID, transactionID string) {
	return h.Get(s.correlationHeader), h.Get(s.transactionHeader)
}

// ExtractMap reads correlation and transaction ids from a string-keyed
// metadata map. Missing keys yield "".
func (s *Store) ExtractMap(m map[string]string) (correlationID, transactionID string) {
	return m[s.correlationHeader], m[s.transactionHeader]
}
