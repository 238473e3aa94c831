// Package poller repeats a status check until it reports a terminal state.
//
// The interval grows by PendingMultiplier after a pending answer and by
// ErrorMultiplier after a failed check, capped at MaxInterval. Failed checks
// are counted separately from pending answers: MaxConsecutiveErrors failures
// in a row abort the poll early with ErrTooManyErrors, while exhausting
// MaxAttempts or Timeout yields ErrPollTimeout.
package poller

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/retry"
)

type Status int

const (
	Pending Status = iota
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "pending"
	}
}

type Config struct {
	// MaxAttempts of zero means no attempt limit; Timeout must then be set.
	MaxAttempts          int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	PendingMultiplier    float64
	ErrorMultiplier      float64
	MaxConsecutiveErrors int
	Timeout              time.Duration
	// SleepFirst waits one interval before the first check.
	SleepFirst bool

	OnError func(err error, attempt int, consecutive int)
	Sleep   func(ctx context.Context, d time.Duration) error
	Now     func() time.Time
}

// Outcome is the terminal answer of a poll.
type Outcome[T any] struct {
	Status   Status
	Value    T
	Attempts int
}

func (o Outcome[T]) Succeeded() bool {
	return o.Status == Success
}

// CheckFunc performs one status read. attempt is 1-based.
type CheckFunc[T any] func(ctx context.Context, attempt int) (Status, T, error)

func (c Config) withDefaults() Config {
	if c.MaxInterval <= 0 {
		c.MaxInterval = c.InitialInterval
	}
	if c.PendingMultiplier <= 0 {
		c.PendingMultiplier = 1
	}
	if c.ErrorMultiplier <= 0 {
		c.ErrorMultiplier = 1
	}
	if c.Sleep == nil {
		c.Sleep = retry.SleepContext
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Poll runs check until it returns Success or Failure.
func Poll[T any](ctx context.Context, cfg Config, check CheckFunc[T]) (Outcome[T], error) {
	cfg = cfg.withDefaults()
	if cfg.MaxAttempts <= 0 && cfg.Timeout <= 0 {
		return Outcome[T]{}, errors.New("poller: either MaxAttempts or Timeout is required")
	}

	var deadline time.Time
	if cfg.Timeout > 0 {
		deadline = cfg.Now().Add(cfg.Timeout)
	}

	interval := cfg.InitialInterval
	consecutiveErrors := 0

	if cfg.SleepFirst {
		if err := cfg.Sleep(ctx, interval); err != nil {
			return Outcome[T]{}, err
		}
	}

	for attempt := 1; cfg.MaxAttempts <= 0 || attempt <= cfg.MaxAttempts; attempt++ {
		status, value, err := check(ctx, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome[T]{Attempts: attempt}, ctx.Err()
			}
			consecutiveErrors++
			if cfg.OnError != nil {
				cfg.OnError(err, attempt, consecutiveErrors)
			}
			if cfg.MaxConsecutiveErrors > 0 && consecutiveErrors >= cfg.MaxConsecutiveErrors {
				return Outcome[T]{Attempts: attempt}, errs.Newf(errs.ErrTooManyErrors,
					"Failed to check status after %d consecutive errors: %v", consecutiveErrors, err)
			}
			interval = grow(interval, cfg.ErrorMultiplier, cfg.MaxInterval)
		} else {
			consecutiveErrors = 0
			if status != Pending {
				return Outcome[T]{Status: status, Value: value, Attempts: attempt}, nil
			}
			interval = grow(interval, cfg.PendingMultiplier, cfg.MaxInterval)
		}

		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			break
		}
		if !deadline.IsZero() && !cfg.Now().Add(interval).Before(deadline) {
			return Outcome[T]{Attempts: attempt}, errs.Newf(errs.ErrPollTimeout, "no terminal state within %s", cfg.Timeout)
		}
		if err := cfg.Sleep(ctx, interval); err != nil {
			return Outcome[T]{Attempts: attempt}, err
		}
	}

	return Outcome[T]{Attempts: cfg.MaxAttempts}, errs.Newf(errs.ErrPollTimeout, "no terminal state after %d attempts", cfg.MaxAttempts)
}

func grow(interval time.Duration, multiplier float64, max time.Duration) time.Duration {
	next := time.Duration(float64(interval) * multiplier)
	if next > max {
		return max
	}
	return next
}

// CompletionConfig is the schedule used to wait for routing-service transfers.
func CompletionConfig() Config {
	return Config{
		MaxAttempts:          60,
		InitialInterval:      5 * time.Second,
		MaxInterval:          15 * time.Second,
		PendingMultiplier:    1.2,
		ErrorMultiplier:      1.5,
		MaxConsecutiveErrors: 5,
	}
}

// CreditConfig is the schedule used to wait for a venue balance credit.
func CreditConfig() Config {
	return Config{
		MaxAttempts:          30,
		InitialInterval:      2 * time.Second,
		MaxInterval:          10 * time.Second,
		PendingMultiplier:    1.3,
		ErrorMultiplier:      1.5,
		MaxConsecutiveErrors: 5,
	}
}
