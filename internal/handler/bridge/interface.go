package bridge

import "github.com/gin-gonic/gin"

type IHandler interface {
	Quote(c *gin.Context)
	Run(c *gin.Context)
	Resume(c *gin.Context)
	State(c *gin.Context)
	Balances(c *gin.Context)
	EstimateGas(c *gin.Context)
}
