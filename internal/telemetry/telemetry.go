package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	defaultStaleAfter = time.Hour

	msgStaleStepOne  = "Step 1 was never broadcast"
	msgHop2Reverted  = "Transfer to Hyperliquid reverted"
	msgSkipFailedFmt = "Step 1 failed: Skip reported %s"
)

type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeNoted     Outcome = "noted"
)

type ReconcileReport struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Noted     int `json:"noted"`
	Errors    int `json:"errors"`
}

type Telemetry struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	history   history.IStore
	skip      skipgo.IClient
	rpc       arbrpc.IArbRPC
	metrics   *monitoring.BackgroundJobMetrics
	now       func() time.Time

	refreshPending func(ctx context.Context) (int, error)
}

// New builds the reconciler. metrics may be nil.
func New(
	appConfig *config.AppConfig,
	logger *logger.Logger,
	historyStore history.IStore,
	skip skipgo.IClient,
	rpc arbrpc.IArbRPC,
	metrics *monitoring.BackgroundJobMetrics,
) *Telemetry {
	return &Telemetry{
		appConfig: appConfig,
		logger:    logger,
		history:   historyStore,
		skip:      skip,
		rpc:       rpc,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SetPendingRefresher registers the hook run after every reconcile pass so
// the orchestrator's pending count follows the entries settled here.
func (t *Telemetry) SetPendingRefresher(fn func(ctx context.Context) (int, error)) {
	t.refreshPending = fn
}

// ReconcileJob adapts ReconcilePending to the instrumented job runner.
func (t *Telemetry) ReconcileJob() monitoring.JobFunc {
	return func(ctx context.Context) (map[string]interface{}, error) {
		report, err := t.ReconcilePending(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"checked":   report.Checked,
			"completed": report.Completed,
			"failed":    report.Failed,
			"noted":     report.Noted,
			"errors":    report.Errors,
		}, nil
	}
}

func (t *Telemetry) ReconcilePending(ctx context.Context) (*ReconcileReport, error) {
	t.logger.Info("[ReconcilePending] Start reconciling pending transactions...")

	pending, err := t.history.ListPending(ctx)
	if err != nil {
		t.logger.Error("[ReconcilePending][ListPending]", map[string]string{
			"error": err.Error(),
		})
		return nil, err
	}

	report := &ReconcileReport{}
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Checked++
		outcome, err := t.reconcile(ctx, tx)
		if err != nil {
			report.Errors++
			t.logger.Error("[ReconcilePending][reconcile]", map[string]string{
				"tx_id": tx.ID,
				"error": err.Error(),
			})
			continue
		}

		switch outcome {
		case OutcomeCompleted:
			report.Completed++
		case OutcomeFailed:
			report.Failed++
		case OutcomeNoted:
			report.Noted++
		}
	}

	if _, err := t.CountTransactions(ctx); err != nil {
		t.logger.Warn("[ReconcilePending][CountTransactions]", map[string]string{
			"error": err.Error(),
		})
	}
	if t.refreshPending != nil {
		if _, err := t.refreshPending(ctx); err != nil {
			t.logger.Warn("[ReconcilePending][refreshPending]", map[string]string{
				"error": err.Error(),
			})
		}
	}

	t.logger.Info("[ReconcilePending] done", map[string]string{
		"checked":   strconv.Itoa(report.Checked),
		"completed": strconv.Itoa(report.Completed),
		"failed":    strconv.Itoa(report.Failed),
	})
	return report, nil
}

// reconcile settles one entry. A recorded hop-2 hash wins over the hop-1
// hash; an entry with no hash at all is failed once it is stale.
func (t *Telemetry) reconcile(ctx context.Context, tx model.BridgeTransaction) (Outcome, error) {
	if hash := tx.TxHashes[consts.HOP_LIFI]; hash != "" {
		return t.reconcileHop2(ctx, tx, hash)
	}
	if hash := tx.TxHashes[consts.HOP_SKIP]; hash != "" {
		return t.reconcileHop1(ctx, tx, hash)
	}

	staleAfter := t.appConfig.Jobs.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	if t.now().Sub(time.UnixMilli(lastTouched(tx))) < staleAfter {
		return OutcomeUnchanged, nil
	}
	return t.settle(ctx, tx, model.StatusFailed, msgStaleStepOne)
}

func (t *Telemetry) reconcileHop2(ctx context.Context, tx model.BridgeTransaction, hash string) (Outcome, error) {
	receipt, err := t.rpc.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return OutcomeUnchanged, nil
	}
	if err != nil {
		return OutcomeUnchanged, err
	}

	if receipt.Status == types.ReceiptStatusSuccessful {
		return t.settle(ctx, tx, model.StatusComplete, "")
	}
	if tx.ErrorMessage() == msgHop2Reverted {
		return OutcomeUnchanged, nil
	}
	if _, err := t.history.Update(ctx, tx.ID, model.BridgeTransactionPatch{Error: model.Ptr(msgHop2Reverted)}); err != nil {
		return OutcomeUnchanged, err
	}
	return OutcomeNoted, nil
}

func (t *Telemetry) reconcileHop1(ctx context.Context, tx model.BridgeTransaction, hash string) (Outcome, error) {
	status, err := t.skip.GetStatus(ctx, hash, t.appConfig.Dydx.ChainID)
	if err != nil {
		return OutcomeUnchanged, err
	}
	if status.IsFailure() {
		return t.settle(ctx, tx, model.StatusFailed, fmt.Sprintf(msgSkipFailedFmt, status.State))
	}
	// a settled hop 1 still waits for the hop-2 transfer
	return OutcomeUnchanged, nil
}

func (t *Telemetry) settle(ctx context.Context, tx model.BridgeTransaction, status model.TransactionStatus, message string) (Outcome, error) {
	_, err := t.history.Update(ctx, tx.ID, model.BridgeTransactionPatch{
		Status: model.Ptr(status),
		Error:  model.Ptr(message),
	})
	if errors.Is(err, errs.ErrInvalidTransition) || errors.Is(err, errs.ErrNotFound) {
		// the entry moved on since it was listed
		return OutcomeUnchanged, nil
	}
	if err != nil {
		return OutcomeUnchanged, err
	}

	t.logger.Info("[settle]", map[string]string{
		"tx_id":  tx.ID,
		"status": string(status),
	})
	if status == model.StatusComplete {
		return OutcomeCompleted, nil
	}
	return OutcomeFailed, nil
}

func (t *Telemetry) CountTransactions(ctx context.Context) (map[string]int, error) {
	list, err := t.history.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{
		string(model.StatusPending):    0,
		string(model.StatusInProgress): 0,
		string(model.StatusComplete):   0,
		string(model.StatusFailed):     0,
	}
	for _, tx := range list {
		counts[string(tx.Status)]++
	}

	if t.metrics != nil {
		for status, n := range counts {
			t.metrics.SetTransactionCount(status, n)
		}
	}
	return counts, nil
}

func lastTouched(tx model.BridgeTransaction) int64 {
	if tx.UpdatedAt > tx.Timestamp {
		return tx.UpdatedAt
	}
	return tx.Timestamp
}
