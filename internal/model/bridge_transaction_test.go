package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusComplete, true},
		{StatusInProgress, StatusFailed, true},
		{StatusInProgress, StatusInProgress, true},
		{StatusInProgress, StatusPending, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusInProgress, false},
		{StatusComplete, StatusFailed, false},
		{StatusFailed, StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBridgeTransaction_Apply(t *testing.T) {
	prev := "Step 1 failed"
	tx := BridgeTransaction{
		ID:            "tx_1",
		Amount:        decimal.NewFromInt(10),
		Status:        StatusInProgress,
		SourceAddress: "dydx1abc",
		DestAddress:   "0xabc",
		TxHashes:      map[string]string{"skipTx": "AAA"},
		CurrentStep:   2,
		Error:         &prev,
	}

	tx.Apply(BridgeTransactionPatch{
		Status:   Ptr(StatusComplete),
		TxHashes: map[string]string{"lifiTx": "0xBBB", "skipTx": ""},
		Error:    Ptr(""),
	})

	assert.Equal(t, StatusComplete, tx.Status)
	assert.Equal(t, map[string]string{"skipTx": "AAA", "lifiTx": "0xBBB"}, tx.TxHashes)
	assert.Equal(t, 2, tx.CurrentStep)
	assert.Nil(t, tx.Error)
	assert.Equal(t, "dydx1abc", tx.SourceAddress)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(10)))
}

func TestBridgeTransaction_CloneIsIndependent(t *testing.T) {
	msg := "boom"
	tx := BridgeTransaction{TxHashes: map[string]string{"skipTx": "AAA"}, Error: &msg}

	c := tx.Clone()
	c.TxHashes["lifiTx"] = "0x1"
	*c.Error = "changed"

	assert.Len(t, tx.TxHashes, 1)
	assert.Equal(t, "boom", tx.ErrorMessage())
}
