// Package orchestrator runs the two-hop dYdX to Hyperliquid bridge as an
// explicit state machine, recording every hop boundary in history so a run
// can be resumed from its last committed step.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/dydx"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/wallet"
)

const (
	defaultQuoteTTL    = 30 * time.Second
	defaultRunTimeout  = 30 * time.Minute
	balanceErrorsLimit = 5
)

var errInvalidState = errors.New("invalid state transition")

type Option func(*Orchestrator)

// WithClock replaces the wall clock and the sleep used by the settlement poll.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.sleep = sleep
	}
}

func WithMetrics(recorder *monitoring.BusinessMetricsRecorder) Option {
	return func(o *Orchestrator) {
		o.metrics = recorder
	}
}

func WithQuoteTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.quotes = cache.New(ttl, 2*ttl)
	}
}

type Orchestrator struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	wallets   *wallet.Wallets
	skip      skipgo.IClient
	lifi      lifi.IClient
	bridge    hyperliquid.IClient
	dydx      dydx.IClient
	history   history.IStore
	metrics   *monitoring.BusinessMetricsRecorder
	quotes    *cache.Cache

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	run     RunContext
	running bool
	pending int

	wg sync.WaitGroup
}

// New wires the orchestrator. lifiClient may be nil, in which case quotes
// carry no alternative hop-2 route.
func New(
	appConfig *config.AppConfig,
	logger *logger.Logger,
	wallets *wallet.Wallets,
	skip skipgo.IClient,
	lifiClient lifi.IClient,
	bridge hyperliquid.IClient,
	dydxClient dydx.IClient,
	historyStore history.IStore,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		appConfig: appConfig,
		logger:    logger,
		wallets:   wallets,
		skip:      skip,
		lifi:      lifiClient,
		bridge:    bridge,
		dydx:      dydxClient,
		history:   historyStore,
		quotes:    cache.New(defaultQuoteTTL, 2*defaultQuoteTTL),
		now:       time.Now,
		sleep:     retry.SleepContext,
		run:       newRunContext(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Snapshot() RunContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run.clone()
}

func (o *Orchestrator) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// RefreshPending resets the pending counter from the history store.
func (o *Orchestrator) RefreshPending(ctx context.Context) (int, error) {
	pending, err := o.history.ListPending(ctx)
	if err != nil {
		o.logger.Error("[RefreshPending][ListPending]", map[string]string{
			"error": err.Error(),
		})
		return o.PendingCount(), err
	}

	o.mu.Lock()
	o.pending = len(pending)
	o.mu.Unlock()
	return len(pending), nil
}

func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) Start(req RunRequest) (RunContext, error) {
	if err := o.begin(req.Direction, req.Amount, ""); err != nil {
		return o.Snapshot(), err
	}
	snapshot := o.Snapshot()
	o.launch(func(ctx context.Context) error {
		return o.execute(ctx, req, nil)
	})
	return snapshot, nil
}

func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (RunContext, error) {
	if err := o.begin(req.Direction, req.Amount, ""); err != nil {
		return o.Snapshot(), err
	}
	err := o.guard(ctx, func(ctx context.Context) error {
		return o.execute(ctx, req, nil)
	})
	return o.Snapshot(), err
}

func (o *Orchestrator) StartResume(req ResumeRequest) (RunContext, error) {
	entry, err := o.beginResume(context.Background(), req)
	if err != nil {
		return o.Snapshot(), err
	}
	snapshot := o.Snapshot()
	o.launch(func(ctx context.Context) error {
		return o.resume(ctx, req, entry)
	})
	return snapshot, nil
}

func (o *Orchestrator) Resume(ctx context.Context, req ResumeRequest) (RunContext, error) {
	entry, err := o.beginResume(ctx, req)
	if err != nil {
		return o.Snapshot(), err
	}
	err = o.guard(ctx, func(ctx context.Context) error {
		return o.resume(ctx, req, entry)
	})
	return o.Snapshot(), err
}

func (o *Orchestrator) launch(fn func(ctx context.Context) error) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		timeout := o.appConfig.Bridge.RunTimeout
		if timeout <= 0 {
			timeout = defaultRunTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := o.guard(ctx, fn); err != nil {
			o.logger.Warn("[launch] run ended with error", map[string]string{
				"error": err.Error(),
			})
		}
	}()
}

// guard runs fn as the active run and always releases it, turning a panic
// into an ERROR state.
func (o *Orchestrator) guard(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	started := o.now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("[guard] recovered from panic", map[string]string{
				"panic": fmt.Sprint(r),
			})
			err = o.fail(errors.Errorf("panic: %v", r), "Unexpected error")
		}
		o.finish(started)
	}()
	return fn(ctx)
}

func (o *Orchestrator) begin(direction model.Direction, amount decimal.Decimal, txID string) error {
	if direction == "" {
		direction = model.DirectionDydxToHL
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running || !o.run.State.CanStart() {
		return errs.ErrRunInProgress
	}
	if direction != model.DirectionDydxToHL {
		return errors.Wrapf(errs.ErrUnsupportedDirection, "%s", direction)
	}

	now := o.now()
	o.run = newRunContext()
	o.run.Direction = direction
	o.run.Amount = amount
	o.run.TxID = txID
	o.run.StartedAt = &now
	o.run.UpdatedAt = &now
	o.running = true
	return nil
}

func (o *Orchestrator) beginResume(ctx context.Context, req ResumeRequest) (*model.BridgeTransaction, error) {
	if req.TxID == "" {
		amount := decimal.Zero
		if req.Amount != nil {
			amount = *req.Amount
		}
		return nil, o.begin(model.DirectionDydxToHL, amount, "")
	}

	entry, err := o.history.Get(ctx, req.TxID)
	if err != nil {
		return nil, err
	}
	if entry.Status.IsTerminal() {
		return nil, errors.Wrapf(errs.ErrInvalidTransition, "transaction %s is already %s", entry.ID, entry.Status)
	}
	if err := o.begin(entry.Direction, entry.Amount, entry.ID); err != nil {
		return nil, err
	}

	o.mu.Lock()
	for hop, hash := range entry.TxHashes {
		o.run.TxHashes[hop] = hash
	}
	o.mu.Unlock()
	return entry, nil
}

func (o *Orchestrator) finish(started time.Time) {
	o.mu.Lock()
	o.running = false
	direction := string(o.run.Direction)
	outcome := strings.ToLower(string(o.run.State))
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.RecordBridgeRun(direction, outcome, o.now().Sub(started).Seconds())
	}
}

// transition moves the run to next. An illegal move puts the run in ERROR.
func (o *Orchestrator) transition(next State) error {
	o.mu.Lock()
	from := o.run.State
	if !from.CanTransitionTo(next) {
		o.mu.Unlock()
		err := errors.Wrapf(errInvalidState, "%s -> %s", from, next)
		return o.fail(err, err.Error())
	}
	now := o.now()
	o.run.State = next
	o.run.UpdatedAt = &now
	txID := o.run.TxID
	o.mu.Unlock()

	o.logger.Info("[transition]", map[string]string{
		"from":  string(from),
		"to":    string(next),
		"tx_id": txID,
	})
	return nil
}

func (o *Orchestrator) update(fn func(r *RunContext)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.run)
	now := o.now()
	o.run.UpdatedAt = &now
}

// fail puts the run in ERROR with message and returns err unchanged.
func (o *Orchestrator) fail(err error, message string) error {
	o.mu.Lock()
	now := o.now()
	stage := o.run.State
	if !o.run.State.IsTerminal() {
		o.run.State = StateError
	}
	o.run.Message = message
	o.run.Error = message
	o.run.UpdatedAt = &now
	o.run.CompletedAt = &now
	txID := o.run.TxID
	o.mu.Unlock()

	o.logger.Error("[fail]", map[string]string{
		"stage":   string(stage),
		"tx_id":   txID,
		"message": message,
		"error":   err.Error(),
	})
	return err
}

func (o *Orchestrator) complete(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	o.run.State = StateComplete
	o.run.Message = message
	o.run.Error = ""
	o.run.UpdatedAt = &now
	o.run.CompletedAt = &now
}

func (o *Orchestrator) adjustPending(delta int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending += delta
	if o.pending < 0 {
		o.pending = 0
	}
}

func (o *Orchestrator) recordHop(hop, status string, started time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordHop(hop, status, o.now().Sub(started).Seconds())
}

// execute walks a full run from wallet connection to the hop-2 transfer.
// entry is set when an existing step-1 history record is being retried.
func (o *Orchestrator) execute(ctx context.Context, req RunRequest, entry *model.BridgeTransaction) error {
	if err := o.transition(StateConnectingWallets); err != nil {
		return err
	}
	addrs, err := o.connect(ctx)
	if err != nil {
		return err
	}

	balance := o.sourceBalance(ctx, addrs.Cosmos)
	if v := ValidateAmount(req.Amount.String(), balance, o.appConfig.Bridge.MinAmount); !v.Valid {
		return o.fail(errors.Wrap(errs.ErrInvalidAmount, v.Error()), v.Error())
	}

	if err := o.transition(StateFetchingQuotes); err != nil {
		return err
	}
	quote, route, err := o.quote(ctx, req.Amount)
	if err != nil {
		return o.fail(err, errs.FormatUserError(err, "Quote"))
	}
	o.update(func(r *RunContext) {
		r.Quote = quote
	})

	if err := o.transition(StateAwaitingApproval); err != nil {
		return err
	}
	txID, err := o.recordStart(ctx, req, addrs, entry)
	if err != nil {
		return o.fail(err, errs.FormatUserError(err, "Saving transaction"))
	}

	baseline, err := o.bridge.GetBalance(ctx, addrs.EVM)
	if err != nil {
		return o.failHop1(ctx, txID, err)
	}
	o.update(func(r *RunContext) {
		r.Baseline = &baseline
	})

	if err := o.transition(StateHop1InFlight); err != nil {
		return err
	}
	started := o.now()
	hash, err := o.hop1(ctx, route, addrs)
	if err != nil {
		o.recordHop(skipHop, "failure", started)
		return o.failHop1(ctx, txID, err)
	}
	o.recordHop(skipHop, "success", started)
	o.commitHop1(ctx, txID, hash)

	if err := o.transition(StateAwaitingHop1Settlement); err != nil {
		return err
	}
	arrived, err := o.waitForArbitrumFunds(ctx, addrs.EVM, baseline)
	if err != nil {
		o.logger.Warn("[execute][waitForArbitrumFunds]", map[string]string{
			"tx_id": txID,
			"error": err.Error(),
		})
		o.noteHistoryError(ctx, txID, errs.ErrFundsInFlight.Error())
		return o.fail(errors.Wrap(errs.ErrFundsInFlight, err.Error()), errs.ErrFundsInFlight.Error())
	}
	o.update(func(r *RunContext) {
		r.Arrived = &arrived
	})

	return o.sendToHyperliquid(ctx, txID, &arrived)
}

// resume continues from the entry's committed step. Without an entry it only
// performs hop 2.
func (o *Orchestrator) resume(ctx context.Context, req ResumeRequest, entry *model.BridgeTransaction) error {
	if entry != nil && entry.CurrentStep < 2 {
		return o.execute(ctx, RunRequest{Amount: entry.Amount, Direction: entry.Direction}, entry)
	}

	if err := o.transition(StateConnectingWallets); err != nil {
		return err
	}
	if _, err := o.connect(ctx); err != nil {
		return err
	}

	txID := ""
	if entry != nil {
		txID = entry.ID
	}
	return o.sendToHyperliquid(ctx, txID, req.Amount)
}

func (o *Orchestrator) connect(ctx context.Context) (wallet.Addresses, error) {
	addrs, err := o.wallets.Connect(ctx)
	if err != nil {
		return wallet.Addresses{}, o.fail(err, errs.FormatUserError(err, "Wallet connection"))
	}
	o.update(func(r *RunContext) {
		r.Addresses = addrs
	})
	return addrs, nil
}

// sourceBalance is nil when the dYdX balance cannot be read; validation then
// skips the balance rule.
func (o *Orchestrator) sourceBalance(ctx context.Context, address string) *decimal.Decimal {
	if o.dydx == nil {
		return nil
	}
	balance, err := o.dydx.GetUSDCBalance(ctx, address)
	if err != nil {
		o.logger.Warn("[sourceBalance][GetUSDCBalance]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		return nil
	}
	return &balance
}

func (o *Orchestrator) recordStart(ctx context.Context, req RunRequest, addrs wallet.Addresses, entry *model.BridgeTransaction) (string, error) {
	if entry != nil {
		if _, err := o.history.Update(ctx, entry.ID, model.BridgeTransactionPatch{
			Status: model.Ptr(model.StatusInProgress),
			Error:  model.Ptr(""),
		}); err != nil {
			return "", err
		}
		return entry.ID, nil
	}

	record, err := o.history.Add(ctx, model.BridgeTransaction{
		Amount:        req.Amount,
		Direction:     req.Direction,
		Status:        model.StatusInProgress,
		SourceAddress: addrs.Cosmos,
		DestAddress:   addrs.EVM,
		CurrentStep:   1,
	})
	if err != nil {
		return "", err
	}

	o.adjustPending(1)
	o.update(func(r *RunContext) {
		r.TxID = record.ID
	})
	return record.ID, nil
}

func (o *Orchestrator) noteHistoryError(ctx context.Context, txID, message string) {
	if txID == "" {
		return
	}
	if _, err := o.history.Update(ctx, txID, model.BridgeTransactionPatch{Error: model.Ptr(message)}); err != nil {
		o.logger.Error("[noteHistoryError][Update]", map[string]string{
			"tx_id": txID,
			"error": err.Error(),
		})
	}
}
