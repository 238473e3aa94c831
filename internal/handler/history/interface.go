package history

import "github.com/gin-gonic/gin"

type IHandler interface {
	List(c *gin.Context)
	Pending(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Clear(c *gin.Context)
}
