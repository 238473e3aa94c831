package model

import (
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusInProgress TransactionStatus = "in_progress"
	StatusComplete   TransactionStatus = "complete"
	StatusFailed     TransactionStatus = "failed"
)

func (s TransactionStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

func (s TransactionStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}

// CanTransitionTo reports whether next is the same status or a later one.
// COMPLETE and FAILED are final.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	return next.rank() > s.rank()
}

type Direction string

const (
	DirectionDydxToHL Direction = "dydx-to-hl"
	DirectionHLToDydx Direction = "hl-to-dydx"
)

// BridgeTransaction is one user-initiated bridge attempt as kept in history.
// Timestamps are unix milliseconds.
type BridgeTransaction struct {
	ID            string            `json:"id"`
	Timestamp     int64             `json:"timestamp"`
	UpdatedAt     int64             `json:"updatedAt,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Direction     Direction         `json:"direction"`
	Status        TransactionStatus `json:"status"`
	SourceAddress string            `json:"sourceAddress"`
	DestAddress   string            `json:"destAddress"`
	TxHashes      map[string]string `json:"txHashes"`
	CurrentStep   int               `json:"currentStep"`
	Error         *string           `json:"error"`
}

// BridgeTransactionPatch lists the mutable fields of a BridgeTransaction.
// Nil fields are left untouched. An empty Error clears the stored error.
type BridgeTransactionPatch struct {
	Status      *TransactionStatus
	Amount      *decimal.Decimal
	TxHashes    map[string]string
	CurrentStep *int
	Error       *string
}

// Apply merges p into t. Hashes are only ever added.
func (t *BridgeTransaction) Apply(p BridgeTransactionPatch) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if len(p.TxHashes) > 0 {
		if t.TxHashes == nil {
			t.TxHashes = map[string]string{}
		}
		for hop, hash := range p.TxHashes {
			if hash == "" {
				continue
			}
			t.TxHashes[hop] = hash
		}
	}
	if p.CurrentStep != nil {
		t.CurrentStep = *p.CurrentStep
	}
	if p.Error != nil {
		if *p.Error == "" {
			t.Error = nil
		} else {
			msg := *p.Error
			t.Error = &msg
		}
	}
}

func (t BridgeTransaction) ErrorMessage() string {
	if t.Error == nil {
		return ""
	}
	return *t.Error
}

// Clone returns a deep copy so callers cannot mutate stored maps.
func (t BridgeTransaction) Clone() BridgeTransaction {
	c := t
	if t.TxHashes != nil {
		c.TxHashes = make(map[string]string, len(t.TxHashes))
		for k, v := range t.TxHashes {
			c.TxHashes[k] = v
		}
	}
	if t.Error != nil {
		msg := *t.Error
		c.Error = &msg
	}
	return c
}

// Ptr is a helper for building patches.
func Ptr[T any](v T) *T {
	return &v
}
