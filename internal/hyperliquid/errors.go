package hyperliquid

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
)

var (
	errApprovalFailed = errors.New("Approval transaction failed")
	errDepositFailed  = errors.New("Deposit with permit transaction failed")
)

// formatContractError prefixes a contract failure with the operation that
// failed and rewrites well-known causes into user-facing text. The result
// still matches the original cause with errors.Is.
func formatContractError(err error, operation string) error {
	if err == nil {
		return nil
	}
	prefix := ""
	if operation != "" {
		prefix = operation + ": "
	}
	msg := strings.ToLower(err.Error())

	switch {
	case errs.IsUserRejection(err):
		return errs.Newf(errs.ErrUserRejected, "%sTransaction rejected by user", prefix)
	case errs.IsInsufficientFunds(err):
		return errs.Newf(errs.ErrInsufficientFunds, "%sInsufficient funds for transaction", prefix)
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused"):
		return errs.Newf(err, "%sNetwork error. Please check your connection and try again.", prefix)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return errs.Newf(err, "%sRequest timed out. Please try again.", prefix)
	case strings.Contains(msg, "gas required exceeds") || strings.Contains(msg, "cannot estimate gas"):
		return errs.Newf(err, "%sTransaction may fail. Please check your balance and try again.", prefix)
	}
	return errs.Newf(err, "%s%s", prefix, err.Error())
}
