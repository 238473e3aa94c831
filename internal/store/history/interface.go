package history

import (
	"context"

	"github.com/dwarvesf/perp-bridge/internal/model"
)

// IStore is the capped, newest-first log of bridge attempts.
type IStore interface {
	Add(ctx context.Context, tx model.BridgeTransaction) (*model.BridgeTransaction, error)
	Update(ctx context.Context, id string, patch model.BridgeTransactionPatch) (*model.BridgeTransaction, error)
	Get(ctx context.Context, id string) (*model.BridgeTransaction, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]model.BridgeTransaction, error)
	ListPending(ctx context.Context) ([]model.BridgeTransaction, error)
}
