package monitoring

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// breaker guards one upstream service. Only transient failures count towards
// tripping it; rejected routes, wallet refusals and 4xx answers are reported
// to the caller without moving the breaker.
type breaker struct {
	name           string
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *ExternalAPIMetrics
	logger         *logger.Logger
	timeoutConfig  TimeoutConfig
}

func newBreaker(name string, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *breaker {
	b := &breaker{
		name:          name,
		metrics:       metrics,
		logger:        logger,
		timeoutConfig: timeoutConfig,
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !retry.IsTransient(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state change", map[string]string{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			metrics.UpdateCircuitBreakerState(name, to)
		},
	}

	b.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	metrics.UpdateCircuitBreakerState(name, gobreaker.StateClosed)
	return b
}

// State reports the breaker state, used by the health handler.
func (b *breaker) State() gobreaker.State {
	return b.circuitBreaker.State()
}

// execute runs fn through the breaker with a per-call deadline and records
// the call in the external API metrics.
func execute[T any](b *breaker, ctx context.Context, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := b.circuitBreaker.Execute(func() (interface{}, error) {
		return b.executeWithTimeout(ctx, operation, func(ctx context.Context) (interface{}, error) {
			return fn(ctx)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.metrics.RecordAPICall(b.name, operation, "rejected", 0)
			return zero, errors.Wrapf(err, "%s unavailable", b.name)
		}
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	return result.(T), nil
}

// executeWithTimeout executes a function with timeout and metrics recording
func (b *breaker) executeWithTimeout(parent context.Context, operation string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	start := time.Now()

	// Determine timeout based on operation type
	var timeout time.Duration
	switch operation {
	case "health_check":
		timeout = b.timeoutConfig.HealthCheckTimeout
	default:
		timeout = b.timeoutConfig.RequestTimeout
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	result, err := fn(ctx)
	duration := time.Since(start).Seconds()

	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		b.metrics.RecordTimeout(b.name, operation)
		b.logError(operation, duration, ctx.Err())
		return nil, errors.Wrapf(err, "timeout after %s", timeout)
	}

	status := "success"
	if err != nil {
		status = "error"
		b.logError(operation, duration, err)
	}
	b.metrics.RecordAPICall(b.name, operation, status, duration)
	return result, err
}

func (b *breaker) logError(operation string, duration float64, err error) {
	b.logger.Error("External API call failed", map[string]string{
		"service":    b.name,
		"operation":  operation,
		"duration":   strconv.FormatFloat(duration, 'f', 3, 64),
		"error":      err.Error(),
		"error_type": string(classifyError(err)),
		"cb_state":   b.circuitBreaker.State().String(),
	})
}

// classifyError classifies errors into different types for metrics and logging
func classifyError(err error) APIErrorType {
	if err == nil {
		return ""
	}

	if errs.IsUserRejection(err) || errs.IsInsufficientFunds(err) {
		return ErrorTypeRejected
	}

	if status := errs.StatusCode(err); status != 0 {
		switch {
		case status == 408 || status == 504:
			return ErrorTypeTimeout
		case status >= 500:
			return ErrorTypeServerError
		case status >= 400:
			return ErrorTypeClientError
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Timeout errors
	if strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded") ||
		strings.Contains(errMsg, "context canceled") {
		return ErrorTypeTimeout
	}

	// Network errors
	if strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "unreachable") ||
		strings.Contains(errMsg, "dns") {
		return ErrorTypeNetworkError
	}

	// Server errors (5xx)
	if strings.Contains(errMsg, "internal server error") ||
		strings.Contains(errMsg, "bad gateway") ||
		strings.Contains(errMsg, "service unavailable") {
		return ErrorTypeServerError
	}

	// Client errors (4xx)
	if strings.Contains(errMsg, "bad request") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "forbidden") ||
		strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "rate limit") {
		return ErrorTypeClientError
	}

	return ErrorTypeUnknown
}

// validateCircuitBreakerConfig validates circuit breaker configuration
func validateCircuitBreakerConfig(config CircuitBreakerConfig) error {
	if config.MaxRequests == 0 {
		return errors.New("max_requests must be greater than 0")
	}

	if config.ConsecutiveFailureThreshold <= 0 {
		return errors.New("consecutive_failure_threshold must be greater than 0")
	}

	if config.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}

	if config.Interval < 0 {
		return errors.New("interval must be non-negative")
	}

	return nil
}
