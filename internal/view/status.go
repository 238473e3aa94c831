package view

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
)

// ErrorStatus maps a domain error to the HTTP status a handler answers with.
func ErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errs.ErrRunInProgress), errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidAmount), errors.Is(err, errs.ErrUnsupportedDirection):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrWalletNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrInvalidRoute), errs.StatusCode(err) != 0:
		// the routing or info service answered badly
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
