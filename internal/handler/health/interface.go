package health

import "github.com/gin-gonic/gin"

type IHealthHandler interface {
	// Basic is the liveness probe and touches no dependency.
	Basic(c *gin.Context)
	// Database pings the history backend.
	Database(c *gin.Context)
	// External runs the Skip, LI.FI, Arbitrum and Hyperliquid probes.
	External(c *gin.Context)
	Jobs(c *gin.Context)
}
