package lifi

import (
	"context"

	"github.com/dwarvesf/perp-bridge/internal/poller"
)

type IClient interface {
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
	GetRoutes(ctx context.Context, req RoutesRequest) ([]Route, error)
	GetStatus(ctx context.Context, req StatusRequest) (*Status, error)
	WaitForCompletion(ctx context.Context, req StatusRequest, cfg poller.Config) (*CompletionResult, error)
	GetChains(ctx context.Context) ([]Chain, error)
	GetTokens(ctx context.Context, chainIDs ...string) (map[string][]Token, error)
}
