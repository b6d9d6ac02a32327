package instrument

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jonwraymond/traceops/adapter"
	"github.com/jonwraymond/traceops/corr"
	"github.com/jonwraymond/traceops/obslog"
	"github.com/jonwraymond/traceops/resilience"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	// Name identifies this client instance in logs and metrics. Required.
	Name string

	// Adapter performs the actual HTTP exchange. Required.
	Adapter adapter.HTTPAdapter

	// Store supplies correlation context. Default: a Store with the
	// default header names.
	Store *corr.Store

	// Logger receives one entry per call. Default: a Logger named after
	// the instance, writing to stderr.
	Logger *obslog.Logger

	// Breaker configures the per-instance circuit breaker.
	Breaker resilience.BreakerConfig

	// TraceContext also injects W3C trace context headers into every
	// outbound request.
	TraceContext bool

	// Meter records call metrics. Default: no-op.
	Meter metric.Meter
}

// HTTPClient issues HTTP calls through an adapter, adding correlation
// headers, timing, structured logging with masked payloads, error
// normalization, and a circuit breaker.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: every call honors ctx cancellation via the adapter.
// - Errors: adapter failures return *adapter.Error; a rejected call
//   returns resilience.ErrOpen or resilience.ErrProbeInFlight unwrapped.
type HTTPClient struct {
	name       string
	adapter    adapter.HTTPAdapter
	store      *corr.Store
	logger     *obslog.Logger
	breaker    *resilience.Breaker
	propagator propagation.TextMapPropagator
	metrics    *callMetrics
}

// NewHTTPClient creates an HTTPClient.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
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

	c := &HTTPClient{
		name:    cfg.Name,
		adapter: cfg.Adapter,
		store:   cfg.Store,
		logger:  cfg.Logger,
		breaker: resilience.NewBreaker(cfg.Breaker),
		metrics: metrics,
	}
	if cfg.TraceContext {
		c.propagator = propagation.TraceContext{}
	}
	return c, nil
}

// Name returns the instance name.
func (c *HTTPClient) Name() string { return c.name }

// Breaker exposes the client's circuit breaker for inspection.
func (c *HTTPClient) Breaker() *resilience.Breaker { return c.breaker }

// Get issues a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*adapter.Response, error) {
	return c.Do(ctx, &adapter.Request{Method: http.MethodGet, URL: url})
}

// Post issues a POST request with body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*adapter.Response, error) {
	return c.Do(ctx, &adapter.Request{Method: http.MethodPost, URL: url, Body: body})
}

// Put issues a PUT request with body.
func (c *HTTPClient) Put(ctx context.Context, url string, body any) (*adapter.Response, error) {
	return c.Do(ctx, &adapter.Request{Method: http.MethodPut, URL: url, Body: body})
}

// Delete issues a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, url string) (*adapter.Response, error) {
	return c.Do(ctx, &adapter.Request{Method: http.MethodDelete, URL: url})
}

// Do issues req through the breaker and the adapter. The active scope's
// correlation ids are injected into the request headers first; with no scope
// open, a fresh correlation id is generated for this call.
func (c *HTTPClient) Do(ctx context.Context, req *adapter.Request) (*adapter.Response, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	corrID := c.store.CorrelationID(ctx)
	if corrID == "" {
		corrID = corr.NewCorrelationID()
	}
	req.Headers[c.store.CorrelationHeader()] = corrID
	txnID := c.store.TransactionID(ctx)
	if txnID != "" {
		req.Headers[c.store.TransactionHeader()] = txnID
	}
	if c.propagator != nil {
		c.propagator.Inject(ctx, propagation.MapCarrier(req.Headers))
	}

	start := time.Now()
	var resp *adapter.Response
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.adapter.Request(ctx, req)
		return callErr
	})
	elapsed := time.Since(start)
	c.metrics.record(ctx, "http", c.name, elapsed, err)

	info := &obslog.HTTPInfo{
		Method:     req.Method,
		URL:        req.URL,
		DurationMS: float64(elapsed) / float64(time.Millisecond),
	}

	if errors.Is(err, resilience.ErrOpen) || errors.Is(err, resilience.ErrProbeInFlight) {
		info.Error = err.Error()
		c.logger.Emit(ctx, obslog.Entry{
			Level:         obslog.LevelError,
			Msg:           "http call rejected",
			CorrelationID: corrID,
			TransactionID: txnID,
			HTTP:          info,
		})
		return nil, err
	}
	if err != nil {
		norm := adapter.Normalize(err, req)
		info.Error = norm.Message
		c.logger.Emit(ctx, obslog.Entry{
			Level:         obslog.LevelError,
			Msg:           "http call failed",
			CorrelationID: corrID,
			TransactionID: txnID,
			HTTP:          info,
			Payload:       callPayload(req.Body, nil),
		})
		return nil, norm
	}

	info.StatusCode = resp.StatusCode
	c.logger.Emit(ctx, obslog.Entry{
		Level:         obslog.LevelInfo,
		Msg:           "http call completed",
		CorrelationID: corrID,
		TransactionID: txnID,
		HTTP:          info,
		Payload:       callPayload(req.Body, resp.Data),
	})
	return resp, nil
}

// callPayload shapes the loggable request/response bodies; the logger masks
// them on emission.
func callPayload(reqBody, respData any) any {
	if reqBody == nil && respData == nil {
		return nil
	}
	p := make(map[string]any, 2)
	if reqBody != nil {
		p["request"] = reqBody
	}
	if respData != nil {
		p["response"] = respData
	}
	return p
}
