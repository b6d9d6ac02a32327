package adapter

import (
	"context"
	"sync"
)

// Message is the adapter-agnostic broker message shape. Correlation metadata
// travels in Headers under the manager's configured names.
type Message struct {
	Payload []byte
	Headers map[string]string
}

// Controls settles a received message. Exactly one of Ack or Nack is invoked
// per message; a second settle attempt returns ErrAlreadySettled.
type Controls interface {
	Ack() error
	Nack(requeue bool) error
}

// Handler processes one received message. The handler settles the message
// through c; if it returns an error or panics, the instrumentation layer
// nacks without requeue on its behalf.
type Handler func(ctx context.Context, msg *Message, c Controls) error

// BrokerAdapter is the capability contract a broker client library exposes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; Subscribe
//   may invoke the handler from the adapter's own goroutines.
// - Context: all methods honor cancellation/deadlines.
// - Errors: every native failure comes back as *Error.
type BrokerAdapter interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Publish(ctx context.Context, topic string, msg *Message) error
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// onceControls enforces the single-settle discipline over an adapter's
// native controls.
type onceControls struct {
	mu      sync.Mutex
	settled bool
	inner   Controls
}

// OnceControls wraps c so that only the first Ack or Nack reaches it; every
// later settle attempt returns ErrAlreadySettled without touching c.
func OnceControls(c Controls) Controls {
	return &onceControls{inner: c}
}

func (o *onceControls) Ack() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled {
		return ErrAlreadySettled
	}
	o.settled = true
	return o.inner.Ack()
}

func (o *onceControls) Nack(requeue bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.settled {
		return ErrAlreadySettled
	}
	o.settled = true
	return o.inner.Nack(requeue)
}
