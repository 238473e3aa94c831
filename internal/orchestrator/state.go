package orchestrator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/wallet"
)

type State string

const (
	StateIdle                   State = "IDLE"
	StateConnectingWallets      State = "CONNECTING_WALLETS"
	StateFetchingQuotes         State = "FETCHING_QUOTES"
	StateAwaitingApproval       State = "AWAITING_APPROVAL"
	StateHop1InFlight           State = "HOP1_IN_FLIGHT"
	StateAwaitingHop1Settlement State = "AWAITING_HOP1_SETTLEMENT"
	StateHop2InFlight           State = "HOP2_IN_FLIGHT"
	StateComplete               State = "COMPLETE"
	StateError                  State = "ERROR"
)

var transitions = map[State][]State{
	StateIdle:                   {StateConnectingWallets},
	StateConnectingWallets:      {StateFetchingQuotes, StateHop2InFlight},
	StateFetchingQuotes:         {StateAwaitingApproval},
	StateAwaitingApproval:       {StateHop1InFlight},
	StateHop1InFlight:           {StateAwaitingHop1Settlement},
	StateAwaitingHop1Settlement: {StateHop2InFlight},
	StateHop2InFlight:           {StateComplete},
}

// CanStart reports whether a new run may begin from s.
func (s State) CanStart() bool {
	return s == StateIdle || s == StateComplete || s == StateError
}

func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateError
}

// CanTransitionTo reports whether next follows s. ERROR is reachable from
// every non-terminal state.
func (s State) CanTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateError {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RunContext is everything one bridge run knows about itself. The
// orchestrator owns the live copy; callers only ever see snapshots.
type RunContext struct {
	State       State                     `json:"state"`
	Direction   model.Direction           `json:"direction,omitempty"`
	Amount      decimal.Decimal           `json:"amount"`
	Addresses   wallet.Addresses          `json:"addresses"`
	Quote       *model.BridgeQuote        `json:"quote,omitempty"`
	TxID        string                    `json:"tx_id,omitempty"`
	TxHashes    map[string]string         `json:"tx_hashes"`
	Baseline    *decimal.Decimal          `json:"baseline,omitempty"`
	Arrived     *decimal.Decimal          `json:"arrived,omitempty"`
	Credit      *hyperliquid.CreditResult `json:"credit,omitempty"`
	Message     string                    `json:"message,omitempty"`
	Error       string                    `json:"error,omitempty"`
	StartedAt   *time.Time                `json:"started_at,omitempty"`
	UpdatedAt   *time.Time                `json:"updated_at,omitempty"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
}

func newRunContext() RunContext {
	return RunContext{
		State:    StateIdle,
		TxHashes: map[string]string{},
	}
}

func (r RunContext) clone() RunContext {
	c := r
	c.TxHashes = make(map[string]string, len(r.TxHashes))
	for k, v := range r.TxHashes {
		c.TxHashes[k] = v
	}
	if r.Quote != nil {
		q := *r.Quote
		c.Quote = &q
	}
	if r.Credit != nil {
		cr := *r.Credit
		c.Credit = &cr
	}
	return c
}
