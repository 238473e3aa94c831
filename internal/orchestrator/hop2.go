package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
)

// sendToHyperliquid transfers amount, or the whole Arbitrum USDC balance when
// amount is nil, to the Hyperliquid bridge. txID may be empty when hop 2 is
// run on its own.
func (o *Orchestrator) sendToHyperliquid(ctx context.Context, txID string, amount *decimal.Decimal) error {
	if err := o.transition(StateHop2InFlight); err != nil {
		return err
	}
	started := o.now()
	evm := o.Snapshot().Addresses.EVM

	sendAmount, err := o.hop2Amount(ctx, evm, amount)
	if err != nil {
		return o.failHop2(ctx, txID, err, started)
	}

	o.logger.Info("[sendToHyperliquid][Transfer]", map[string]string{
		"tx_id":  txID,
		"amount": sendAmount.String(),
	})
	result, err := o.bridge.Transfer(ctx, sendAmount)
	if err != nil {
		return o.failHop2(ctx, txID, err, started)
	}
	o.recordHop(lifiHop, "success", started)
	o.update(func(r *RunContext) {
		r.TxHashes[lifiHop] = result.TxHash
	})

	if o.appConfig.Hyperliquid.WaitForCredit {
		o.confirmCredit(ctx, evm, sendAmount)
	}

	if txID != "" {
		if _, err := o.history.Update(ctx, txID, model.BridgeTransactionPatch{
			Status:   model.Ptr(model.StatusComplete),
			TxHashes: map[string]string{lifiHop: result.TxHash},
			Error:    model.Ptr(""),
		}); err != nil {
			o.logger.Error("[sendToHyperliquid][Update]", map[string]string{
				"tx_id": txID,
				"error": err.Error(),
			})
		}
		o.adjustPending(-1)
	}

	o.complete(fmt.Sprintf("Bridge complete! %s USDC sent to Hyperliquid.", sendAmount.String()))
	return nil
}

func (o *Orchestrator) hop2Amount(ctx context.Context, address string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount != nil && amount.IsPositive() {
		return *amount, nil
	}

	balance, err := o.bridge.GetBalance(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.IsPositive() {
		return decimal.Zero, errs.ErrNoBalance
	}
	return balance, nil
}

// failHop2 leaves the history status alone: the funds are still on Arbitrum
// and the entry stays resumable.
func (o *Orchestrator) failHop2(ctx context.Context, txID string, err error, started time.Time) error {
	o.recordHop(lifiHop, "failure", started)

	message := err.Error()
	if errs.IsUserRejection(err) {
		message = errs.ErrUserRejected.Error()
	}
	if message == "" {
		message = "Transfer to Hyperliquid failed"
	}

	o.noteHistoryError(ctx, txID, message)
	return o.fail(err, message)
}

// confirmCredit waits for the venue to report the deposit. The transfer is
// already final, so a missing credit is only logged.
func (o *Orchestrator) confirmCredit(ctx context.Context, address string, amount decimal.Decimal) {
	cfg := poller.CreditConfig()
	cfg.Sleep = o.sleep
	cfg.Now = o.now

	credit, err := o.bridge.WaitForCredit(ctx, address, amount, cfg)
	if err != nil {
		o.logger.Warn("[confirmCredit][WaitForCredit]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		return
	}
	o.update(func(r *RunContext) {
		r.Credit = credit
	})
	if !credit.Success {
		o.logger.Warn("[confirmCredit] credit not observed", map[string]string{
			"address": address,
			"balance": credit.Balance.String(),
			"error":   credit.Error,
		})
	}
}
