package telemetry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/store/kv/memory"
	"github.com/dwarvesf/perp-bridge/internal/types/environments"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

type stubSkip struct {
	skipgo.IClient
	states map[string]string
	calls  int
}

func (s *stubSkip) GetStatus(ctx context.Context, txHash, chainID string) (*skipgo.TxStatus, error) {
	s.calls++
	return &skipgo.TxStatus{State: s.states[txHash]}, nil
}

type stubRPC struct {
	arbrpc.IArbRPC
	receipts map[string]*types.Receipt
}

func (s *stubRPC) TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	receipt, ok := s.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

type fixture struct {
	telemetry *Telemetry
	history   history.IStore
	skip      *stubSkip
	rpc       *stubRPC
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(environments.Test)
	f := &fixture{
		skip: &stubSkip{states: map[string]string{}},
		rpc:  &stubRPC{receipts: map[string]*types.Receipt{}},
		now:  time.UnixMilli(1_700_000_000_000),
	}
	clock := func() time.Time { return f.now }
	f.history = history.New(memory.New(), history.DefaultKey, history.DefaultMaxItems, log, history.WithClock(clock))

	cfg := &config.AppConfig{
		Dydx: config.DydxConfig{ChainID: "dydx-mainnet-1"},
		Jobs: config.JobsConfig{StaleAfter: time.Hour},
	}
	f.telemetry = New(cfg, log, f.history, f.skip, f.rpc, nil)
	f.telemetry.now = clock
	return f
}

func (f *fixture) add(t *testing.T, hashes map[string]string, step int) string {
	t.Helper()
	tx, err := f.history.Add(context.Background(), model.BridgeTransaction{
		Amount:      decimal.NewFromInt(10),
		Direction:   model.DirectionDydxToHL,
		Status:      model.StatusInProgress,
		TxHashes:    hashes,
		CurrentStep: step,
	})
	require.NoError(t, err)
	return tx.ID
}

func (f *fixture) get(t *testing.T, id string) *model.BridgeTransaction {
	t.Helper()
	tx, err := f.history.Get(context.Background(), id)
	require.NoError(t, err)
	return tx
}

func TestReconcilePending_CompletesMinedHop2(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, map[string]string{"skipTx": "0xAAA", "lifiTx": "0xBBB"}, 2)
	f.rpc.receipts["0xBBB"] = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ReconcileReport{Checked: 1, Completed: 1}, report)
	assert.Equal(t, model.StatusComplete, f.get(t, id).Status)
	assert.Equal(t, 0, f.skip.calls)
}

func TestReconcilePending_NotesRevertedHop2Once(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, map[string]string{"skipTx": "0xAAA", "lifiTx": "0xBBB"}, 2)
	f.rpc.receipts["0xBBB"] = &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(1)}

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Noted)

	tx := f.get(t, id)
	assert.Equal(t, model.StatusInProgress, tx.Status)
	assert.Equal(t, "Transfer to Hyperliquid reverted", tx.ErrorMessage())

	report, err = f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Noted)
}

func TestReconcilePending_LeavesUnminedHop2(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, map[string]string{"lifiTx": "0xBBB"}, 2)

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Checked: 1}, report)
	assert.Equal(t, model.StatusInProgress, f.get(t, id).Status)
}

func TestReconcilePending_FailsAbandonedHop1(t *testing.T) {
	f := newFixture(t)
	failed := f.add(t, map[string]string{"skipTx": "0xAAA"}, 2)
	abandoned := f.add(t, map[string]string{"skipTx": "0xCCC"}, 2)
	settled := f.add(t, map[string]string{"skipTx": "0xDDD"}, 2)
	f.skip.states["0xAAA"] = skipgo.StateCompletedError
	f.skip.states["0xCCC"] = skipgo.StateAbandoned
	f.skip.states["0xDDD"] = skipgo.StateCompletedSuccess

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Failed)

	assert.Equal(t, model.StatusFailed, f.get(t, failed).Status)
	assert.Equal(t, "Step 1 failed: Skip reported STATE_COMPLETED_ERROR", f.get(t, failed).ErrorMessage())
	assert.Equal(t, model.StatusFailed, f.get(t, abandoned).Status)
	assert.Equal(t, model.StatusInProgress, f.get(t, settled).Status)
}

func TestReconcilePending_FailsStaleStepOne(t *testing.T) {
	f := newFixture(t)
	stale := f.add(t, nil, 1)

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, model.StatusInProgress, f.get(t, stale).Status)

	f.now = f.now.Add(2 * time.Hour)
	fresh := f.add(t, nil, 1)

	report, err = f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, model.StatusFailed, f.get(t, stale).Status)
	assert.Equal(t, "Step 1 was never broadcast", f.get(t, stale).ErrorMessage())
	assert.Equal(t, model.StatusInProgress, f.get(t, fresh).Status)
}

func TestReconcilePending_IgnoresTerminalEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.add(t, map[string]string{"skipTx": "0xAAA"}, 2)
	_, err := f.history.Update(ctx, id, model.BridgeTransactionPatch{Status: model.Ptr(model.StatusComplete)})
	require.NoError(t, err)
	f.skip.states["0xAAA"] = skipgo.StateCompletedError

	report, err := f.telemetry.ReconcilePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, model.StatusComplete, f.get(t, id).Status)
}

func TestCountTransactions_SetsGauges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	metrics := monitoring.NewBackgroundJobMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)
	f.telemetry.metrics = metrics

	f.add(t, nil, 1)
	id := f.add(t, nil, 1)
	_, err := f.history.Update(ctx, id, model.BridgeTransactionPatch{Status: model.Ptr(model.StatusFailed)})
	require.NoError(t, err)

	counts, err := f.telemetry.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["in_progress"])
	assert.Equal(t, 1, counts["failed"])
	assert.Equal(t, 0, counts["complete"])

	families, err := registry.Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if family.GetName() != "perp_bridge_history_transactions" {
			continue
		}
		found = true
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == "failed" {
					assert.Equal(t, float64(1), metric.GetGauge().GetValue())
				}
			}
		}
	}
	assert.True(t, found)
}

func TestReconcileJob_ReturnsMetadata(t *testing.T) {
	f := newFixture(t)
	f.add(t, map[string]string{"lifiTx": "0xBBB"}, 2)
	f.rpc.receipts["0xBBB"] = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}

	metadata, err := f.telemetry.ReconcileJob()(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, metadata["checked"])
	assert.Equal(t, 1, metadata["completed"])
}

func TestReconcilePending_RefreshesPendingCount(t *testing.T) {
	f := newFixture(t)
	f.add(t, map[string]string{"lifiTx": "0xBBB"}, 2)
	f.add(t, map[string]string{"lifiTx": "0xCCC"}, 2)
	f.rpc.receipts["0xBBB"] = &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}

	var refreshed []int
	f.telemetry.SetPendingRefresher(func(ctx context.Context) (int, error) {
		pending, err := f.history.ListPending(ctx)
		if err != nil {
			return 0, err
		}
		refreshed = append(refreshed, len(pending))
		return len(pending), nil
	})

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, []int{1}, refreshed)
}

func TestReconcilePending_RefresherErrorDoesNotFailTheRun(t *testing.T) {
	f := newFixture(t)
	f.telemetry.SetPendingRefresher(func(context.Context) (int, error) {
		return 0, errors.New("history unavailable")
	})

	report, err := f.telemetry.ReconcilePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
}
