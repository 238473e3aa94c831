// Package errs holds the error kinds shared by the bridge clients and the orchestrator.
package errs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidRoute         = errors.New("invalid route response")
	ErrPollTimeout          = errors.New("poll timed out")
	ErrTooManyErrors        = errors.New("too many consecutive errors")
	ErrUserRejected         = errors.New("Transaction rejected by user")
	ErrInsufficientFunds    = errors.New("Insufficient funds for transaction")
	ErrTransferFailed       = errors.New("transfer transaction failed")
	ErrNoBalance            = errors.New("No USDC balance on Arbitrum")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrRunInProgress        = errors.New("a bridge run is already in progress")
	ErrNotFound             = errors.New("not found")
	ErrAddressMismatch      = errors.New("address list does not match required chains")
	ErrUnsupportedDirection = errors.New("unsupported bridge direction")
	ErrWalletNotConnected   = errors.New("wallet not connected")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidPayload       = errors.New("invalid signable payload")
	ErrNoTxExecuted         = errors.New("No transaction was executed")
	ErrFundsInFlight        = errors.New(`Funds sent from dYdX! CCTP bridge in progress. Use "Send to Hyperliquid" button once funds arrive on Arbitrum (~5-10 min).`)
)

// HTTPError is returned by the JSON clients for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError builds an HTTPError, taking the message from the decoded body
// when the service supplied one.
func NewHTTPError(statusCode int, statusText string, message string, body string) *HTTPError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, statusText)
	}
	return &HTTPError{StatusCode: statusCode, Message: message, Body: body}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Wallet codes a signer uses when its holder declines a request.
const (
	WalletCodeUserRejected   = "4001"
	WalletCodeActionRejected = "ACTION_REJECTED"
)

// WalletError is a refusal reported by a signer, with the wallet's own code.
type WalletError struct {
	Code    string
	Message string
}

func (e *WalletError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wallet error %s", e.Code)
	}
	return e.Message
}

// Rejected reports whether the code means the holder declined.
func (e *WalletError) Rejected() bool {
	return e.Code == WalletCodeUserRejected || strings.EqualFold(e.Code, WalletCodeActionRejected)
}

// IsUserRejection reports whether a wallet declined to sign. Service
// responses and failed chain transactions are never rejections, whatever
// their text says.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) {
		return true
	}
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr.Rejected()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) || errors.Is(err, ErrTransferFailed) {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "rejected")
}

func IsInsufficientFunds(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInsufficientFunds) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

// FormatUserError turns a client error into a message fit for an end user.
// context names the operation and is used for the fallback message.
func FormatUserError(err error, context string) string {
	if err == nil {
		return ""
	}
	if context == "" {
		context = "Operation"
	}

	msg := strings.ToLower(err.Error())
	status := StatusCode(err)

	switch {
	case IsUserRejection(err):
		return ErrUserRejected.Error()
	case status == 429 || strings.Contains(msg, "rate limit"):
		return "Rate limited. Please wait a moment and try again."
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "Request timed out. Please check your connection and try again."
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "network"):
		return "Network error. Please check your internet connection."
	case status >= 500:
		return "Service temporarily unavailable. Please try again later."
	case status == 400:
		return err.Error()
	case status == 404:
		return "Route not found. The requested resource may not exist."
	}

	return fmt.Sprintf("%s failed: %s", context, err.Error())
}

// FromResponse builds an HTTPError from a failed JSON response, preferring
// the service's own "message" or "error" field.
func FromResponse(statusCode int, status string, body []byte) *HTTPError {
	var payload struct {
		Message string      `json:"message"`
		Error   interface{} `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != nil:
			if s, ok := payload.Error.(string); ok {
				msg = s
			} else if m, ok := payload.Error.(map[string]interface{}); ok {
				if s, ok := m["message"].(string); ok {
					msg = s
				}
			}
		}
	}

	statusText := strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprintf("%d", statusCode)))
	return NewHTTPError(statusCode, statusText, msg, string(body))
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Newf returns an error whose message is exactly the formatted text and
// which still matches kind with errors.Is.
func Newf(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
