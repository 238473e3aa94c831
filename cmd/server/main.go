package main

import (
	"github.com/dwarvesf/perp-bridge/internal/server"
)

// @title			Perp Bridge API
// @version		1.0
// @description	Moves USDC from dYdX to Hyperliquid through Arbitrum.
// @BasePath		/api/v1
func main() {
	server.Init()
}
