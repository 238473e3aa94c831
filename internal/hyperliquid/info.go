package hyperliquid

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/retry"
)

var creditTolerance = decimal.NewFromFloat(consts.HYPERLIQUID_CREDIT_TOLERANCE)

func (h *Hyperliquid) fetchAccountValue(ctx context.Context, address string) (decimal.Decimal, error) {
	var state clearinghouseState
	resp, err := h.info.R().
		SetContext(ctx).
		SetBody(clearinghouseStateRequest{Type: "clearinghouseState", User: address}).
		SetResult(&state).
		Post(h.appConfig.Hyperliquid.InfoURL)
	if err != nil {
		return decimal.Zero, err
	}
	if resp.IsError() {
		return decimal.Zero, errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
	}

	if state.MarginSummary == nil || state.MarginSummary.AccountValue == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(state.MarginSummary.AccountValue)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid accountValue %q", state.MarginSummary.AccountValue)
	}
	return value, nil
}

// GetAccountValue returns the Hyperliquid margin account value of address.
func (h *Hyperliquid) GetAccountValue(ctx context.Context, address string) (decimal.Decimal, error) {
	p := h.policy
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		h.logger.Warn("[hyperliquid.GetAccountValue][retry]", map[string]string{
			"attempt": strconv.Itoa(attempt),
			"error":   err.Error(),
		})
	}
	return retry.Do(ctx, p, func(ctx context.Context) (decimal.Decimal, error) {
		return h.fetchAccountValue(ctx, address)
	})
}

// WaitForCredit polls the account value until it reaches 99% of expected.
// Running out of attempts or hitting repeated errors yields Success=false
// with an explanation; only context cancellation is returned as an error.
func (h *Hyperliquid) WaitForCredit(ctx context.Context, address string, expected decimal.Decimal, cfg poller.Config) (*CreditResult, error) {
	threshold := expected.Mul(creditTolerance)
	if cfg.OnError == nil {
		cfg.OnError = func(err error, attempt int, consecutive int) {
			h.logger.Warn("[hyperliquid.WaitForCredit]", map[string]string{
				"address":     address,
				"attempt":     fmt.Sprintf("%d/%d", attempt, cfg.MaxAttempts),
				"consecutive": strconv.Itoa(consecutive),
				"error":       err.Error(),
			})
		}
	}

	outcome, err := poller.Poll(ctx, cfg, func(ctx context.Context, attempt int) (poller.Status, decimal.Decimal, error) {
		value, err := h.fetchAccountValue(ctx, address)
		if err != nil {
			return poller.Pending, decimal.Zero, err
		}
		if value.GreaterThanOrEqual(threshold) {
			return poller.Success, value, nil
		}
		return poller.Pending, value, nil
	})

	switch {
	case err == nil:
		return &CreditResult{Success: true, Balance: outcome.Value, Attempts: outcome.Attempts}, nil
	case errors.Is(err, errs.ErrTooManyErrors):
		return &CreditResult{
			Attempts: outcome.Attempts,
			Error: fmt.Sprintf("Failed to check Hyperliquid balance after %d consecutive errors. Your deposit may still be processing.",
				cfg.MaxConsecutiveErrors),
		}, nil
	case errors.Is(err, errs.ErrPollTimeout):
		return &CreditResult{
			Attempts: outcome.Attempts,
			Error: fmt.Sprintf("Timeout waiting for credit after %d attempts. Your deposit may still be processing - check your Hyperliquid account.",
				outcome.Attempts),
		}, nil
	}
	return nil, err
}
