package orchestrator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
)

// Validation is the verdict on a user-entered amount. Errors lists every
// rule the amount breaks, not just the first.
type Validation struct {
	Valid  bool            `json:"valid"`
	Amount decimal.Decimal `json:"amount"`
	Errors []string        `json:"errors,omitempty"`
}

func (v Validation) Error() string {
	return strings.Join(v.Errors, "; ")
}

// ValidateAmount checks raw against the bridge rules. balance is nil when the
// source balance is unknown, in which case the balance rule is skipped.
func ValidateAmount(raw string, balance *decimal.Decimal, minAmount decimal.Decimal) Validation {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Validation{Errors: []string{"Amount is required"}}
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Validation{Errors: []string{"Invalid amount"}}
	}

	v := Validation{Amount: amount}
	if !amount.IsPositive() {
		v.Errors = append(v.Errors, "Amount must be greater than 0")
	}
	if amount.IsPositive() && amount.LessThan(minAmount) {
		v.Errors = append(v.Errors, fmt.Sprintf("Minimum amount is %s USDC", minAmount.String()))
	}
	if balance != nil && amount.GreaterThan(*balance) {
		v.Errors = append(v.Errors, fmt.Sprintf("Insufficient balance (available: %s USDC)", balance.StringFixed(2)))
	}
	if !amount.Equal(amount.Truncate(consts.USDC_DECIMALS)) {
		v.Errors = append(v.Errors, fmt.Sprintf("Amount can have at most %d decimal places", consts.USDC_DECIMALS))
	}

	v.Valid = len(v.Errors) == 0
	return v
}
