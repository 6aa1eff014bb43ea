package retry

import (
	"context"
	"math/rand"
	"time"
)

// Sleeper suspends for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper backed by a timer.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy configures Do.
type Policy struct {
	MaxAttempts int
	IsRetryable func(error) bool
	Backoff     func(attempt int) time.Duration
	Sleep       Sleeper
	OnRetry     func(attempt int, err error)
}

// Do runs fn until it succeeds, returns a non-retryable error, or attempts run out.
// attempt is 1-based. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}

	var (
		zero T
		err  error
	)
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		var out T
		out, err = fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		if attempt == p.MaxAttempts || (p.IsRetryable != nil && !p.IsRetryable(err)) {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if sleepErr := p.Sleep(ctx, wait); sleepErr != nil {
			return zero, sleepErr
		}
	}
	return zero, err
}

// LinearJitter returns base*attempt plus a random extra in [0, jitter).
func LinearJitter(base, jitter time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		wait := base * time.Duration(attempt)
		if jitter > 0 {
			wait += time.Duration(rand.Int63n(int64(jitter)))
		}
		return wait
	}
}

// Jitter returns min plus a random extra in [0, spread).
func Jitter(min, spread time.Duration) time.Duration {
	if spread <= 0 {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(spread)))
}
