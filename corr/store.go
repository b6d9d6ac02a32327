package corr

import (
	"context"

	"github.com/google/uuid"
)

// Default header names for propagated identifiers.
const (
	DefaultCorrelationHeader = "x-correlation-id"
	DefaultTransactionHeader = "x-transaction-id"
)

// Well-known keys stored in a frame.
const (
	keyCorrelationID = "correlationId"
	keyTransactionID = "transactionId"
)

// Config configures a Store.
type Config struct {
	// CorrelationHeader is the header/property name the correlation id
	// travels under. Default: "x-correlation-id"
	CorrelationHeader string

	// TransactionHeader is the header/property name the transaction id
	// travels under. Default: "x-transaction-id"
	TransactionHeader string
}

// Store manages nested correlation scopes.
//
// Contract:
// - Concurrency: safe for concurrent use; frames may be written by
//   goroutines spawned inside their scope.
// - Errors: Get outside any scope returns ("", false), never an error.
// - Ownership: a Store holds configuration only; scope state travels with
//   the context.
type Store struct {
	correlationHeader string
	transactionHeader string
}

// New creates a Store, applying defaults for unset header names.
func New(cfg Config) *Store {
	if cfg.CorrelationHeader == "" {
		cfg.CorrelationHeader = DefaultCorrelationHeader
	}
	if cfg.TransactionHeader == "" {
		cfg.TransactionHeader = DefaultTransactionHeader
	}
	return &Store{
		correlationHeader: cfg.CorrelationHeader,
		transactionHeader: cfg.TransactionHeader,
	}
}

// CorrelationHeader returns the configured correlation id header name.
func (s *Store) CorrelationHeader() string { return s.correlationHeader }

// TransactionHeader returns the configured transaction id header name.
func (s *Store) TransactionHeader() string { return s.transactionHeader }

// Run opens a child scope of the scope active in ctx (or a fresh root scope
// if none is active) and executes fn with it. Values set inside fn are
// visible to everything fn calls and discarded when Run returns; the caller's
// scope is untouched on every exit path, including panics, because the child
// frame only ever travels with the context handed to fn.
//
// Run never swallows fn's error or panic.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	child := newFrame(frameFromContext(ctx))
	return fn(contextWithFrame(ctx, child))
}

// Set writes key=value into the active scope. Outside any scope it is a
// no-op: there is no frame to write to and context misuse is not an error.
func (s *Store) Set(ctx context.Context, key, value string) {
	if f := frameFromContext(ctx); f != nil {
		f.set(key, value)
	}
}

// Get reads key from the active scope, falling through to ancestor scopes
// on miss. Outside any scope, or for an absent key, it returns ("", false).
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	f := frameFromContext(ctx)
	if f == nil {
		return "", false
	}
	return f.get(key)
}

// CorrelationID returns the correlation id visible in the active scope, or
// "" if none is set.
func (s *Store) CorrelationID(ctx context.Context) string {
	v, _ := s.Get(ctx, keyCorrelationID)
	return v
}

// SetCorrelationID sets the correlation id in the active scope.
func (s *Store) SetCorrelationID(ctx context.Context, id string) {
	s.Set(ctx, keyCorrelationID, id)
}

// TransactionID returns the transaction id visible in the active scope, or
// "" if none is set.
func (s *Store) TransactionID(ctx context.Context) string {
	v, _ := s.Get(ctx, keyTransactionID)
	return v
}

// SetTransactionID sets the transaction id in the active scope.
func (s *Store) SetTransactionID(ctx context.Context, id string) {
	s.Set(ctx, keyTransactionID, id)
}

// NewCorrelationID generates a fresh correlation id.
func NewCorrelationID() string {
	return uuid.NewString()
}
