package retry

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
)

var retryableStatus = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsTransient classifies network failures, timeouts and retryable HTTP
// statuses. Wallet rejections and insufficient funds are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errs.IsUserRejection(err) || errs.IsInsufficientFunds(err) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, errs.ErrInvalidRoute) {
		return false
	}

	if status := errs.StatusCode(err); status != 0 {
		return retryableStatus[status]
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "timed out", "rate limit", "429", "connection refused", "connection reset", "eof", "network"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
