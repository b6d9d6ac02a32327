package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/traceops/resilience"
)

func ExampleBreaker() {
	b := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: 2,
		CoolDown:         time.Minute,
	})

	failing := func(context.Context) error { return errors.New("dependency down") }

	_ = b.Do(context.Background(), failing)
	_ = b.Do(context.Background(), failing)

	// The breaker is open now; calls are rejected without being issued.
	err := b.Do(context.Background(), failing)
	fmt.Println(errors.Is(err, resilience.ErrOpen))
	fmt.Println(b.State())
	// Output:
	// true
	// open
}

func ExampleRetry() {
	r := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
	})

	attempts := 0
	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	fmt.Println(err, attempts)
	// Output:
	// <nil> 2
}
