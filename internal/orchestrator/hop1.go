package orchestrator

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/wallet"
)

const (
	skipHop = consts.HOP_SKIP
	lifiHop = consts.HOP_LIFI
)

// hop1 signs and broadcasts the routing service's cosmos transaction and
// returns its hash. Only the first broadcast payload is tracked; the rest of
// the batch is not sent.
func (o *Orchestrator) hop1(ctx context.Context, route *model.RouteQuote, addrs wallet.Addresses) (string, error) {
	addresses, err := o.skip.AddressList(ctx, route, addrs.Cosmos, addrs.EVM)
	if err != nil {
		return "", err
	}

	payloads, err := o.skip.GetSignablePayloads(ctx, route, addresses)
	if err != nil {
		return "", err
	}

	for i, payload := range payloads {
		if payload.Kind != model.PayloadCosmos || payload.Cosmos == nil {
			o.logger.Warn("[hop1] skipping non-cosmos payload", map[string]string{
				"index": strconv.Itoa(i),
				"kind":  string(payload.Kind),
				"chain": payload.ChainID,
			})
			continue
		}

		req := o.cosmosSignRequest(payload, addrs.Cosmos)
		o.logger.Info("[hop1][SignAndBroadcast]", map[string]string{
			"chain": req.ChainID,
			"rpc":   req.RPCURL,
			"msgs":  strconv.Itoa(len(req.Msgs)),
		})

		result, err := o.wallets.Cosmos.SignAndBroadcast(ctx, req)
		if err != nil {
			return "", err
		}
		if result.Code != 0 {
			return "", errs.Newf(errs.ErrTransferFailed, "Transaction failed: %s", result.RawLog)
		}
		return result.TxHash, nil
	}

	return "", errs.ErrNoTxExecuted
}

func (o *Orchestrator) cosmosSignRequest(payload model.SignablePayload, cosmosAddress string) model.CosmosSignRequest {
	cfg := o.appConfig.Dydx

	chainID := payload.Cosmos.ChainID
	if chainID == "" {
		chainID = payload.ChainID
	}
	if chainID == "" {
		chainID = cfg.ChainID
	}

	rpcURL := cfg.RPCURL
	if skipgo.IsNobleChain(chainID) {
		rpcURL = cfg.NobleRPCURL
	}

	signer := payload.Cosmos.SignerAddress
	if signer == "" {
		signer = cosmosAddress
	}

	return model.CosmosSignRequest{
		ChainID:       chainID,
		RPCURL:        rpcURL,
		SignerAddress: signer,
		Msgs:          payload.Cosmos.Msgs,
		Fee: model.CosmosFee{
			Amount: []model.Coin{{Denom: cfg.USDCDenom, Amount: cfg.FeeAmount}},
			Gas:    cfg.GasLimit,
		},
		Memo: "",
	}
}

func (o *Orchestrator) commitHop1(ctx context.Context, txID, hash string) {
	o.update(func(r *RunContext) {
		r.TxHashes[skipHop] = hash
	})

	if _, err := o.history.Update(ctx, txID, model.BridgeTransactionPatch{
		TxHashes:    map[string]string{skipHop: hash},
		CurrentStep: model.Ptr(2),
	}); err != nil {
		// the broadcast already happened, so the run carries on
		o.logger.Error("[commitHop1][Update]", map[string]string{
			"tx_id": txID,
			"hash":  hash,
			"error": err.Error(),
		})
	}
}

// failHop1 ends the run and marks its history entry FAILED.
func (o *Orchestrator) failHop1(ctx context.Context, txID string, err error) error {
	message := "Step 1 failed: " + err.Error()
	if errs.IsUserRejection(err) {
		message = errs.ErrUserRejected.Error()
	}

	if _, uerr := o.history.Update(ctx, txID, model.BridgeTransactionPatch{
		Status: model.Ptr(model.StatusFailed),
		Error:  model.Ptr(message),
	}); uerr != nil {
		o.logger.Error("[failHop1][Update]", map[string]string{
			"tx_id": txID,
			"error": uerr.Error(),
		})
	}
	o.adjustPending(-1)

	return o.fail(err, message)
}

// waitForArbitrumFunds polls the Arbitrum USDC balance until it rises above
// baseline and returns the increase.
func (o *Orchestrator) waitForArbitrumFunds(ctx context.Context, address string, baseline decimal.Decimal) (decimal.Decimal, error) {
	cfg := poller.Config{
		InitialInterval:      o.appConfig.Bridge.BalancePollInterval,
		Timeout:              o.appConfig.Bridge.BalancePollTimeout,
		MaxConsecutiveErrors: balanceErrorsLimit,
		SleepFirst:           true,
		Sleep:                o.sleep,
		Now:                  o.now,
		OnError: func(err error, attempt int, consecutive int) {
			o.logger.Warn("[waitForArbitrumFunds][GetBalance]", map[string]string{
				"attempt":     strconv.Itoa(attempt),
				"consecutive": strconv.Itoa(consecutive),
				"error":       err.Error(),
			})
		},
	}

	outcome, err := poller.Poll(ctx, cfg, func(ctx context.Context, attempt int) (poller.Status, decimal.Decimal, error) {
		current, err := o.bridge.GetBalance(ctx, address)
		if err != nil {
			return poller.Pending, decimal.Zero, err
		}
		if current.GreaterThan(baseline) {
			return poller.Success, current.Sub(baseline), nil
		}
		return poller.Pending, decimal.Zero, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return outcome.Value, nil
}
