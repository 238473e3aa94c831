package skipgo

import (
	"context"

	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
)

type IClient interface {
	GetChains(ctx context.Context) ([]Chain, error)
	GetRoute(ctx context.Context, req RouteRequest) (*model.RouteQuote, error)
	AddressList(ctx context.Context, route *model.RouteQuote, cosmosAddress, evmAddress string) ([]string, error)
	GetSignablePayloads(ctx context.Context, route *model.RouteQuote, addresses []string) ([]model.SignablePayload, error)
	GetStatus(ctx context.Context, txHash, chainID string) (*TxStatus, error)
	WaitForCompletion(ctx context.Context, txHash, chainID string, cfg poller.Config) (*CompletionResult, error)
}
