package resilience

import (
	"context"
	"sync"
	"time"
)

// State is the breaker state.
type State int

const (
	// Closed: calls flow normally.
	Closed State = iota
	// Open: calls are rejected without being issued.
	Open
	// HalfOpen: a single trial call decides recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// FailureThreshold is the run of consecutive failures that trips the
	// breaker. Default: 5
	FailureThreshold int

	// CoolDown is how long the breaker stays Open before admitting the
	// recovery probe. Default: 30 seconds
	CoolDown time.Duration

	// ShouldTrip decides whether an error counts toward the threshold.
	// Default: every non-nil error counts.
	ShouldTrip func(err error) bool

	// OnStateChange is notified of every transition.
	OnStateChange func(from, to State)
}

// Breaker is a three-state circuit breaker. State transitions are
// serialized under one mutex; the guarded operation itself runs unlocked.
type Breaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       State
	consecutive int
	openedAt    time.Time
	probing     bool
}

// NewBreaker creates a Breaker in the Closed state.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.CoolDown <= 0 {
		config.CoolDown = 30 * time.Second
	}
	if config.ShouldTrip == nil {
		config.ShouldTrip = func(err error) bool { return err != nil }
	}
	return &Breaker{config: config}
}

// Do runs op through the breaker. While Open it returns ErrOpen without
// invoking op; while the half-open probe is in flight it returns
// ErrProbeInFlight. Otherwise op's own result is returned unchanged.
func (b *Breaker) Do(ctx context.Context, op func(context.Context) error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}
	err = op(ctx)
	b.settle(probe, err)
	return err
}

// State returns the current breaker state, accounting for cool-down expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	s, promoted := b.stateLocked()
	b.mu.Unlock()

	if promoted {
		b.notify(Open, HalfOpen)
	}
	return s
}

// Reset forces the breaker back to Closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = Closed
	b.consecutive = 0
	b.probing = false
	b.mu.Unlock()

	if from != Closed {
		b.notify(from, Closed)
	}
}

// Metrics reports the breaker's current counters.
func (b *Breaker) Metrics() BreakerMetrics {
	b.mu.Lock()
	s, promoted := b.stateLocked()
	m := BreakerMetrics{
		State:               s,
		ConsecutiveFailures: b.consecutive,
		OpenedAt:            b.openedAt,
	}
	b.mu.Unlock()

	if promoted {
		b.notify(Open, HalfOpen)
	}
	return m
}

// BreakerMetrics is a snapshot of breaker counters.
type BreakerMetrics struct {
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time
}

// admit decides whether a call may proceed. The caller that wins the
// half-open slot is marked as the probe: only its outcome may settle the
// HalfOpen state.
func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	s, promoted := b.stateLocked()
	switch s {
	case Open:
		err = ErrOpen
	case HalfOpen:
		if b.probing {
			err = ErrProbeInFlight
		} else {
			b.probing = true
			probe = true
		}
	}
	b.mu.Unlock()

	if promoted {
		b.notify(Open, HalfOpen)
	}
	return probe, err
}

// settle records a call's outcome. Only the probe's own result decides the
// HalfOpen transition, and only calls settling while still Closed count
// toward the threshold; anything else is a stale result admitted before a
// state change and is ignored.
func (b *Breaker) settle(probe bool, err error) {
	b.mu.Lock()
	from := b.state
	failed := b.config.ShouldTrip(err)

	switch {
	case probe:
		if b.state == HalfOpen && b.probing {
			b.probing = false
			if failed {
				// Probe failed: back to Open, cool-down restarts.
				b.state = Open
				b.openedAt = time.Now()
			} else {
				b.state = Closed
				b.consecutive = 0
			}
		}

	case b.state == Closed:
		if failed {
			b.consecutive++
			if b.consecutive >= b.config.FailureThreshold {
				b.state = Open
				b.openedAt = time.Now()
			}
		} else {
			b.consecutive = 0
		}
	}

	to := b.state
	b.mu.Unlock()

	if from != to {
		b.notify(from, to)
	}
}

// stateLocked promotes Open to HalfOpen once the cool-down has elapsed. The
// second result reports the promotion; the caller announces it after
// releasing the lock.
func (b *Breaker) stateLocked() (State, bool) {
	if b.state == Open && time.Since(b.openedAt) >= b.config.CoolDown {
		b.state = HalfOpen
		b.probing = false
		return b.state, true
	}
	return b.state, false
}

func (b *Breaker) notify(from, to State) {
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
