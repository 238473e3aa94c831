package health

import (
	"context"

	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
)

// Probe is a lightweight call against one external dependency. Name matches
// the circuit breaker guarding it.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

func SkipProbe(client skipgo.IClient) Probe {
	return Probe{Name: monitoring.SkipAPI, Check: func(ctx context.Context) error {
		_, err := client.GetChains(ctx)
		return err
	}}
}

func LifiProbe(client lifi.IClient) Probe {
	return Probe{Name: monitoring.LifiAPI, Check: func(ctx context.Context) error {
		_, err := client.GetChains(ctx)
		return err
	}}
}

func ArbitrumProbe(rpc arbrpc.IArbRPC) Probe {
	return Probe{Name: monitoring.ArbitrumRPC, Check: func(ctx context.Context) error {
		_, err := rpc.BlockNumber(ctx)
		return err
	}}
}

func HyperliquidProbe(client hyperliquid.IClient) Probe {
	return Probe{Name: monitoring.HyperliquidInfo, Check: func(ctx context.Context) error {
		_, err := client.GetAccountValue(ctx, client.Address())
		return err
	}}
}
