package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{})

	if b.config.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want 5", b.config.FailureThreshold)
	}
	if b.config.CoolDown != 30*time.Second {
		t.Errorf("CoolDown = %v, want 30s", b.config.CoolDown)
	}
	if b.State() != Closed {
		t.Errorf("initial State() = %v, want closed", b.State())
	}
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, CoolDown: time.Hour})
	testErr := errors.New("dependency down")
	fail := func(context.Context) error { return testErr }

	for i := 0; i < 2; i++ {
		if err := b.Do(context.Background(), fail); !errors.Is(err, testErr) {
			t.Fatalf("Do() error = %v, want %v", err, testErr)
		}
		if b.State() != Closed {
			t.Fatalf("after %d failures State() = %v, want closed", i+1, b.State())
		}
	}

	_ = b.Do(context.Background(), fail)
	if b.State() != Open {
		t.Fatalf("after threshold State() = %v, want open", b.State())
	}

	err := b.Do(context.Background(), func(context.Context) error {
		t.Error("operation ran while breaker open")
		return nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Do() while open = %v, want ErrOpen", err)
	}
}

func TestBreaker_SuccessResetsRun(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 3, CoolDown: time.Hour})
	testErr := errors.New("flaky")

	fail := func(context.Context) error { return testErr }
	ok := func(context.Context) error { return nil }

	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), ok)
	_ = b.Do(context.Background(), fail)
	_ = b.Do(context.Background(), fail)

	if b.State() != Closed {
		t.Errorf("State() = %v, want closed (run was reset)", b.State())
	}
}

func TestBreaker_HalfOpenAfterCoolDown(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: 10 * time.Millisecond})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("x") })
	if b.State() != Open {
		t.Fatalf("State() = %v, want open", b.State())
	}

	time.Sleep(20 * time.Millisecond)

	if b.State() != HalfOpen {
		t.Errorf("State() after cool-down = %v, want half-open", b.State())
	}
}

func TestBreaker_ProbeSuccessCloses(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: 10 * time.Millisecond})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("x") })
	time.Sleep(20 * time.Millisecond)

	if err := b.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("probe Do() error = %v", err)
	}
	if b.State() != Closed {
		t.Errorf("State() after successful probe = %v, want closed", b.State())
	}
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: 10 * time.Millisecond})
	testErr := errors.New("still down")

	_ = b.Do(context.Background(), func(context.Context) error { return testErr })
	time.Sleep(20 * time.Millisecond)

	_ = b.Do(context.Background(), func(context.Context) error { return testErr })
	if b.State() != Open {
		t.Errorf("State() after failed probe = %v, want open", b.State())
	}
}

func TestBreaker_SingleProbe(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: 10 * time.Millisecond})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("x") })
	time.Sleep(20 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Do(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// Second call while the probe is in flight is rejected.
	err := b.Do(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrProbeInFlight) {
		t.Errorf("Do() during probe = %v, want ErrProbeInFlight", err)
	}
	close(release)
}

func TestBreaker_OnStateChange(t *testing.T) {
	var mu sync.Mutex
	var transitions []State

	b := NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		CoolDown:         10 * time.Millisecond,
		OnStateChange: func(from, to State) {
			mu.Lock()
			transitions = append(transitions, to)
			mu.Unlock()
		},
	})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("x") })
	time.Sleep(20 * time.Millisecond)
	_ = b.Do(context.Background(), func(context.Context) error { return nil })

	mu.Lock()
	defer mu.Unlock()
	want := []State{Open, HalfOpen, Closed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i, s := range want {
		if transitions[i] != s {
			t.Errorf("transition[%d] = %v, want %v", i, transitions[i], s)
		}
	}
}

func TestBreaker_ShouldTrip(t *testing.T) {
	benign := errors.New("not found")
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		CoolDown:         time.Hour,
		ShouldTrip:       func(err error) bool { return err != nil && !errors.Is(err, benign) },
	})

	_ = b.Do(context.Background(), func(context.Context) error { return benign })
	if b.State() != Closed {
		t.Errorf("State() = %v after benign error, want closed", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: time.Hour})

	_ = b.Do(context.Background(), func(context.Context) error { return errors.New("x") })
	if b.State() != Open {
		t.Fatalf("State() = %v, want open", b.State())
	}

	b.Reset()
	if b.State() != Closed {
		t.Errorf("State() after Reset() = %v, want closed", b.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Closed, "closed"},
		{Open, "open"},
		{HalfOpen, "half-open"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestBreaker_StateChangeHookMayInspect(t *testing.T) {
	// The cool-down promotion fires the hook too; a hook that reads the
	// breaker back must not deadlock on any notification path.
	var b *Breaker
	b = NewBreaker(BreakerConfig{
		FailureThreshold: 1,
		CoolDown:         time.Millisecond,
		OnStateChange: func(from, to State) {
			_ = b.State()
			_ = b.Metrics()
		},
	})

	_ = b.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	time.Sleep(5 * time.Millisecond)

	if got := b.State(); got != HalfOpen {
		t.Errorf("State() = %v, want HalfOpen", got)
	}
}

func TestBreaker_StaleResultIgnoredAfterStateChange(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, CoolDown: 5 * time.Millisecond})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// Trip the breaker while the slow call is in flight, then let the
	// cool-down elapse.
	_ = b.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	time.Sleep(10 * time.Millisecond)
	if got := b.State(); got != HalfOpen {
		t.Fatalf("State() = %v, want HalfOpen", got)
	}

	// The slow call was admitted while Closed; its late success must not
	// stand in for the recovery probe.
	close(release)
	<-done

	if got := b.State(); got != HalfOpen {
		t.Errorf("State() = %v after stale success, want HalfOpen", got)
	}

	// The real probe still decides recovery.
	if err := b.Do(context.Background(), func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("probe Do() error = %v", err)
	}
	if got := b.State(); got != Closed {
		t.Errorf("State() = %v after probe success, want Closed", got)
	}
}
