// Package retry wraps a call with exponential backoff and jitter.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const jitterRatio = 0.3

// Policy configures Do. The zero value of every field falls back to DefaultPolicy.
type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	ShouldRetry       func(err error) bool
	OnRetry           func(err error, attempt int, delay time.Duration)

	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func() float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
		ShouldRetry:       IsTransient,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.BackoffMultiplier <= 0 {
		p.BackoffMultiplier = d.BackoffMultiplier
	}
	if p.ShouldRetry == nil {
		p.ShouldRetry = d.ShouldRetry
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	if p.Jitter == nil {
		p.Jitter = rand.Float64
	}
	return p
}

// Delay returns the wait before the attempt that follows a failed attempt
// number `attempt` (1-based). r is the jitter draw in [0, 1).
func Delay(p Policy, attempt int, r float64) time.Duration {
	base := float64(p.InitialDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))
	delay := base + r*jitterRatio*base
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// Do invokes fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if attempt >= p.MaxAttempts || !p.ShouldRetry(err) {
			return zero, err
		}

		delay := Delay(p, attempt, p.Jitter())
		if p.OnRetry != nil {
			p.OnRetry(err, attempt, delay)
		}

		if serr := p.Sleep(ctx, delay); serr != nil {
			return zero, err
		}
	}
}

// SleepContext blocks for d or until ctx is done.
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
