package obslog

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonwraymond/traceops/corr"
	"github.com/jonwraymond/traceops/mask"
)

// Config configures a Logger.
type Config struct {
	// Service names the emitting service. Required.
	Service string

	// Level is the minimum severity to emit. Default: "info"
	Level string

	// Writer receives serialized entries. Default: os.Stderr
	Writer io.Writer

	// Store supplies correlation context for each entry. Optional.
	Store *corr.Store

	// Masker redacts entry payloads. Default: a mask.Engine with the
	// built-in rule set, so payloads are never written unredacted.
	Masker *mask.Engine

	// Buffer, when set, decouples entry production from writing. Writer
	// is ignored for buffered entries; the Buffer owns the sink.
	Buffer *Buffer
}

// Logger emits structured JSON-line entries.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: logging is best-effort and never panics; malformed entries
//   are dropped.
type Logger struct {
	level   Level
	service string
	store   *corr.Store
	masker *mask.Engine
	buffer *Buffer

	mu sync.Mutex
	w  io.Writer
}

// New creates a Logger.
func New(cfg Config) (*Logger, error) {
	if cfg.Service == "" {
		return nil, ErrMissingService
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Masker == nil {
		m, err := mask.New(mask.Config{})
		if err != nil {
			return nil, err
		}
		cfg.Masker = m
	}
	return &Logger{
		level:   ParseLevel(cfg.Level),
		service: cfg.Service,
		store:   cfg.Store,
		masker:  cfg.Masker,
		buffer:  cfg.Buffer,
		w:       cfg.Writer,
	}, nil
}

// Debug emits a debug entry.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.Emit(ctx, Entry{Level: LevelDebug, Msg: msg, Payload: payloadFrom(fields)})
}

// Info emits an info entry.
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.Emit(ctx, Entry{Level: LevelInfo, Msg: msg, Payload: payloadFrom(fields)})
}

// Warn emits a warn entry.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.Emit(ctx, Entry{Level: LevelWarn, Msg: msg, Payload: payloadFrom(fields)})
}

// Error emits an error entry.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.Emit(ctx, Entry{Level: LevelError, Msg: msg, Payload: payloadFrom(fields)})
}

func payloadFrom(fields []Field) any {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

// Emit enriches, masks, serializes, and writes one entry. Entries below the
// configured level are discarded.
func (l *Logger) Emit(ctx context.Context, e Entry) {
	if e.Level == 0 {
		e.Level = LevelInfo
	}
	if e.Level < l.level {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if l.store != nil {
		if e.CorrelationID == "" {
			e.CorrelationID = l.store.CorrelationID(ctx)
		}
		if e.TransactionID == "" {
			e.TransactionID = l.store.TransactionID(ctx)
		}
	}

	out := map[string]any{
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
		"level":     e.Level.String(),
		"msg":       e.Msg,
		"service":   l.service,
	}
	if e.CorrelationID != "" {
		out["correlationId"] = e.CorrelationID
	}
	if e.TransactionID != "" {
		out["transactionId"] = e.TransactionID
	}
	if e.HTTP != nil {
		out["http"] = e.HTTP
	}
	if e.Broker != nil {
		out["broker"] = e.Broker
	}
	if e.Payload != nil {
		out["payload"] = l.masker.Process(e.Payload)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return // best-effort: drop malformed entries
	}
	line := append(data, '\n')

	if l.buffer != nil {
		l.buffer.Write(e.Level, line)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(line)
}
