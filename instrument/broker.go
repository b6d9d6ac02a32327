package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/traceops/adapter"
	"github.com/jonwraymond/traceops/corr"
	"github.com/jonwraymond/traceops/obslog"
	"github.com/jonwraymond/traceops/resilience"
)

// BrokerConfig configures a BrokerClient.
type BrokerConfig struct {
	// Name identifies this client instance in logs and metrics. Required.
	Name string

	// Adapter performs the actual broker operations. Required.
	Adapter adapter.BrokerAdapter

	// Store supplies correlation context. Default: a Store with the
	// default header names.
	Store *corr.Store

	// Logger receives one entry per operation. Default: a Logger named
	// after the instance, writing to stderr.
	Logger *obslog.Logger

	// Breaker configures the circuit breaker guarding publishes.
	Breaker resilience.BreakerConfig

	// MaxInFlight bounds concurrent handler executions across all
	// subscriptions. Zero means unbounded.
	MaxInFlight int

	// Meter records operation metrics. Default: no-op.
	Meter metric.Meter
}

// BrokerClient wraps a broker adapter with correlation propagation,
// structured logging, metrics, and failure handling for received messages.
//
// Contract:
// - Concurrency: safe for concurrent use; handlers run on the adapter's
//   goroutines, gated by MaxInFlight when set.
// - Errors: publish failures return *adapter.Error; a rejected publish
//   returns resilience.ErrOpen unwrapped.
// - Ownership: the client never acks on a handler's behalf. It nacks
//   without requeue, exactly once, when the handler fails or panics.
type BrokerClient struct {
	name    string
	adapter adapter.BrokerAdapter
	store   *corr.Store
	logger  *obslog.Logger
	breaker *resilience.Breaker
	sem     *semaphore.Weighted
	metrics *callMetrics
}

// NewBrokerClient creates a BrokerClient.
func NewBrokerClient(cfg BrokerConfig) (*BrokerClient, error) {
	if cfg.Name == "" {
		return nil, ErrMissingName
	}
	if cfg.Adapter == nil {
		return nil, ErrMissingAdapter
	}
	if cfg.Store == nil {
		cfg.Store = corr.New(corr.Config{})
	}
	if cfg.Logger == nil {
		l, err := obslog.New(obslog.Config{Service: cfg.Name, Store: cfg.Store})
		if err != nil {
			return nil, err
		}
		cfg.Logger = l
	}
	metrics, err := newCallMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	c := &BrokerClient{
		name:    cfg.Name,
		adapter: cfg.Adapter,
		store:   cfg.Store,
		logger:  cfg.Logger,
		breaker: resilience.NewBreaker(cfg.Breaker),
		metrics: metrics,
	}
	if cfg.MaxInFlight > 0 {
		c.sem = semaphore.NewWeighted(int64(cfg.MaxInFlight))
	}
	return c, nil
}

// Name returns the instance name.
func (c *BrokerClient) Name() string { return c.name }

// Breaker exposes the client's circuit breaker for inspection.
func (c *BrokerClient) Breaker() *resilience.Breaker { return c.breaker }

// Connect establishes the adapter's connection.
func (c *BrokerClient) Connect(ctx context.Context) error {
	if err := c.adapter.Connect(ctx); err != nil {
		norm := adapter.Normalize(err, nil)
		c.logger.Emit(ctx, obslog.Entry{
			Level:  obslog.LevelError,
			Msg:    "broker connect failed",
			Broker: &obslog.BrokerInfo{Instance: c.name, Operation: "connect", Error: norm.Message},
		})
		return norm
	}
	c.logger.Emit(ctx, obslog.Entry{
		Level:  obslog.LevelInfo,
		Msg:    "broker connected",
		Broker: &obslog.BrokerInfo{Instance: c.name, Operation: "connect"},
	})
	return nil
}

// Disconnect tears down the adapter's connection.
func (c *BrokerClient) Disconnect(ctx context.Context) error {
	if err := c.adapter.Disconnect(ctx); err != nil {
		return adapter.Normalize(err, nil)
	}
	c.logger.Emit(ctx, obslog.Entry{
		Level:  obslog.LevelInfo,
		Msg:    "broker disconnected",
		Broker: &obslog.BrokerInfo{Instance: c.name, Operation: "disconnect"},
	})
	return nil
}

// Publish sends msg to topic through the breaker. The active scope's
// correlation ids are injected into the message headers first; with no scope
// open, a fresh correlation id is generated for this publish.
func (c *BrokerClient) Publish(ctx context.Context, topic string, msg *adapter.Message) error {
	if msg.Headers == nil {
		msg.Headers = make(map[string]string)
	}
	corrID := c.store.CorrelationID(ctx)
	if corrID == "" {
		corrID = corr.NewCorrelationID()
	}
	msg.Headers[c.store.CorrelationHeader()] = corrID
	txnID := c.store.TransactionID(ctx)
	if txnID != "" {
		msg.Headers[c.store.TransactionHeader()] = txnID
	}

	start := time.Now()
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.adapter.Publish(ctx, topic, msg)
	})
	elapsed := time.Since(start)
	c.metrics.record(ctx, "broker", c.name, elapsed, err)

	info := &obslog.BrokerInfo{
		Instance:   c.name,
		Topic:      topic,
		Operation:  "publish",
		DurationMS: float64(elapsed) / float64(time.Millisecond),
	}

	if errors.Is(err, resilience.ErrOpen) || errors.Is(err, resilience.ErrProbeInFlight) {
		info.Error = err.Error()
		c.logger.Emit(ctx, obslog.Entry{
			Level:         obslog.LevelError,
			Msg:           "broker publish rejected",
			CorrelationID: corrID,
			TransactionID: txnID,
			Broker:        info,
		})
		return err
	}
	if err != nil {
		norm := adapter.Normalize(err, nil)
		info.Error = norm.Message
		c.logger.Emit(ctx, obslog.Entry{
			Level:         obslog.LevelError,
			Msg:           "broker publish failed",
			CorrelationID: corrID,
			TransactionID: txnID,
			Broker:        info,
		})
		return norm
	}

	c.logger.Emit(ctx, obslog.Entry{
		Level:         obslog.LevelInfo,
		Msg:           "broker message published",
		CorrelationID: corrID,
		TransactionID: txnID,
		Broker:        info,
		Payload:       messagePayload(msg),
	})
	return nil
}

// Subscribe registers handler for topic. Each delivery runs inside a fresh
// correlation scope seeded from the message headers (or a generated id when
// the producer sent none), with the settle controls guarded so that exactly
// one ack or nack reaches the adapter.
func (c *BrokerClient) Subscribe(ctx context.Context, topic string, handler adapter.Handler) error {
	wrapped := func(hctx context.Context, msg *adapter.Message, ctl adapter.Controls) error {
		if c.sem != nil {
			if err := c.sem.Acquire(hctx, 1); err != nil {
				return adapter.Normalize(err, nil)
			}
			defer c.sem.Release(1)
		}
		return c.handle(hctx, topic, msg, ctl, handler)
	}
	if err := c.adapter.Subscribe(ctx, topic, wrapped); err != nil {
		return adapter.Normalize(err, nil)
	}
	return nil
}

func (c *BrokerClient) handle(ctx context.Context, topic string, msg *adapter.Message, ctl adapter.Controls, handler adapter.Handler) error {
	corrID, txnID := c.store.ExtractMap(msg.Headers)
	if corrID == "" {
		corrID = corr.NewCorrelationID()
	}
	guarded := adapter.OnceControls(ctl)

	start := time.Now()
	err := c.invoke(ctx, msg, guarded, handler, corrID, txnID)
	elapsed := time.Since(start)
	c.metrics.record(ctx, "broker", c.name, elapsed, err)

	info := &obslog.BrokerInfo{
		Instance:   c.name,
		Topic:      topic,
		Operation:  "receive",
		DurationMS: float64(elapsed) / float64(time.Millisecond),
	}

	if err != nil {
		// The handler failed without settling: reject once, no requeue.
		if nerr := guarded.Nack(false); nerr != nil && !errors.Is(nerr, adapter.ErrAlreadySettled) {
			c.logger.Emit(ctx, obslog.Entry{
				Level:         obslog.LevelWarn,
				Msg:           "broker nack failed",
				CorrelationID: corrID,
				TransactionID: txnID,
				Broker:        &obslog.BrokerInfo{Instance: c.name, Topic: topic, Operation: "nack", Error: nerr.Error()},
			})
		}
		norm := adapter.Normalize(err, nil)
		info.Outcome = "nacked"
		info.Error = norm.Message
		c.logger.Emit(ctx, obslog.Entry{
			Level:         obslog.LevelError,
			Msg:           "broker message handling failed",
			CorrelationID: corrID,
			TransactionID: txnID,
			Broker:        info,
			Payload:       messagePayload(msg),
		})
		return norm
	}

	info.Outcome = "processed"
	c.logger.Emit(ctx, obslog.Entry{
		Level:         obslog.LevelDebug,
		Msg:           "broker message processed",
		CorrelationID: corrID,
		TransactionID: txnID,
		Broker:        info,
	})
	return nil
}

// invoke runs the handler inside its correlation scope, converting panics
// into errors so a panicking handler still gets its message settled.
func (c *BrokerClient) invoke(ctx context.Context, msg *adapter.Message, ctl adapter.Controls, handler adapter.Handler, corrID, txnID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("instrument: handler panic: %v", r)
		}
	}()
	return c.store.Run(ctx, func(sctx context.Context) error {
		c.store.SetCorrelationID(sctx, corrID)
		if txnID != "" {
			c.store.SetTransactionID(sctx, txnID)
		}
		return handler(sctx, msg, ctl)
	})
}

// messagePayload shapes a loggable view of the message body. Small JSON
// payloads are decoded so the masking rules see their fields; anything else
// is reduced to its size.
func messagePayload(msg *adapter.Message) any {
	const maxDecoded = 4096
	if len(msg.Payload) > 0 && len(msg.Payload) <= maxDecoded {
		var v any
		if err := json.Unmarshal(msg.Payload, &v); err == nil {
			return v
		}
	}
	return map[string]any{"sizeBytes": len(msg.Payload)}
}
