package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Web3BigInt is an on-chain integer amount together with its token decimals.
type Web3BigInt struct {
	Value   string `json:"value"`
	Decimal int    `json:"decimal"`
}

// NewWeb3BigInt converts a human amount (e.g. 10.5 USDC) into base units.
// Digits beyond the token precision are truncated.
func NewWeb3BigInt(amount decimal.Decimal, decimals int) *Web3BigInt {
	base := amount.Shift(int32(decimals)).Truncate(0)
	return &Web3BigInt{
		Value:   base.BigInt().String(),
		Decimal: decimals,
	}
}

func Web3BigIntFromBig(value *big.Int, decimals int) *Web3BigInt {
	if value == nil {
		value = big.NewInt(0)
	}
	return &Web3BigInt{
		Value:   value.String(),
		Decimal: decimals,
	}
}

func (w *Web3BigInt) BigInt() *big.Int {
	num, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return big.NewInt(0)
	}
	return num
}

func (w *Web3BigInt) Int64() (int64, bool) {
	amt, ok := new(big.Int).SetString(w.Value, 10)
	if !ok {
		return 0, false
	}

	return amt.Int64(), true
}

// ToDecimal returns the human amount.
func (w *Web3BigInt) ToDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(w.BigInt(), -int32(w.Decimal))
}

func (w *Web3BigInt) ToFloat() float64 {
	f, _ := w.ToDecimal().Float64()
	return f
}

func (w *Web3BigInt) IsPositive() bool {
	return w.BigInt().Sign() > 0
}

func (w *Web3BigInt) Cmp(other *Web3BigInt) int {
	return w.BigInt().Cmp(other.BigInt())
}

func (w *Web3BigInt) Add(number *Web3BigInt) *Web3BigInt {
	result := new(big.Int).Add(w.BigInt(), number.BigInt())
	return Web3BigIntFromBig(result, w.Decimal)
}

func (w *Web3BigInt) Sub(number *Web3BigInt) *Web3BigInt {
	result := new(big.Int).Sub(w.BigInt(), number.BigInt())
	return Web3BigIntFromBig(result, w.Decimal)
}
