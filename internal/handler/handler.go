package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwarvesf/perp-bridge/internal/handler/bridge"
	"github.com/dwarvesf/perp-bridge/internal/handler/health"
	"github.com/dwarvesf/perp-bridge/internal/handler/history"
	"github.com/dwarvesf/perp-bridge/internal/handler/metrics"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/orchestrator"
	historyStore "github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

type Handler struct {
	BridgeHandler  bridge.IHandler
	HistoryHandler history.IHandler
	HealthHandler  health.IHealthHandler
	MetricsHandler *metrics.MetricsHandler
}

// Deps is everything the handlers read from. Breakers, Probes,
// JobStatusManager and MetricsRecorder may be empty.
type Deps struct {
	Orchestrator     orchestrator.IOrchestrator
	History          historyStore.IStore
	Backend          kv.IStore
	Probes           []health.Probe
	Breakers         []monitoring.StateReporter
	JobStatusManager *monitoring.JobStatusManager
	MetricsRecorder  *monitoring.BusinessMetricsRecorder
	MetricsRegistry  *prometheus.Registry
}

func New(appConfig *config.AppConfig, logger *logger.Logger, deps Deps) *Handler {
	return &Handler{
		BridgeHandler:  bridge.New(deps.Orchestrator, logger, appConfig),
		HistoryHandler: history.New(deps.History, deps.Orchestrator, logger, appConfig, deps.MetricsRecorder),
		HealthHandler:  health.New(appConfig, logger, deps.Backend, deps.Probes, deps.Breakers, deps.JobStatusManager),
		MetricsHandler: metrics.NewMetricsHandler(deps.MetricsRegistry),
	}
}
