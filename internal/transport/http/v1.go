package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/perp-bridge/internal/handler"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	bridge := v1.Group("/bridge")
	{
		bridge.POST("/quote", h.BridgeHandler.Quote)
		bridge.POST("/run", h.BridgeHandler.Run)
		bridge.POST("/resume", h.BridgeHandler.Resume)
		bridge.GET("/state", h.BridgeHandler.State)
		bridge.GET("/balances", h.BridgeHandler.Balances)
		bridge.GET("/estimate-gas", h.BridgeHandler.EstimateGas)
	}

	history := v1.Group("/history")
	{
		history.GET("", h.HistoryHandler.List)
		history.GET("/pending", h.HistoryHandler.Pending)
		history.GET("/:id", h.HistoryHandler.Get)
		history.DELETE("/:id", h.HistoryHandler.Delete)
		history.DELETE("", h.HistoryHandler.Clear)
	}

	health := v1.Group("/health")
	{
		health.GET("/db", h.HealthHandler.Database)
		health.GET("/external", h.HealthHandler.External)
		health.GET("/jobs", h.HealthHandler.Jobs)
	}

	r.GET("/healthz", h.HealthHandler.Basic)
	r.GET("/metrics", h.MetricsHandler.Handler())
}
