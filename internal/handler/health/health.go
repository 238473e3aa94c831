package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	kvpostgres "github.com/dwarvesf/perp-bridge/internal/store/kv/postgres"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// HealthHandler implements IHealthHandler interface
type HealthHandler struct {
	config           *config.AppConfig
	logger           *logger.Logger
	backend          kv.IStore
	probes           []Probe
	breakers         map[string]monitoring.StateReporter
	jobStatusManager *monitoring.JobStatusManager
}

// New creates a new health handler instance. breakers are matched to probes
// by name.
func New(config *config.AppConfig, logger *logger.Logger, backend kv.IStore, probes []Probe, breakers []monitoring.StateReporter, jobStatusManager *monitoring.JobStatusManager) IHealthHandler {
	byName := make(map[string]monitoring.StateReporter, len(breakers))
	for _, b := range breakers {
		byName[b.Name()] = b
	}
	return &HealthHandler{
		config:           config,
		logger:           logger,
		backend:          backend,
		probes:           probes,
		breakers:         byName,
		jobStatusManager: jobStatusManager,
	}
}

// Basic handles the basic health check endpoint (/healthz)
// @Summary Basic health check
// @Description Returns basic system availability status
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	response := BasicHealthResponse{
		Message: "ok",
	}
	c.JSON(http.StatusOK, response)
}

// Database handles the history store health check endpoint
// @Summary History store health check
// @Description Validates connectivity to the key/value backend holding the bridge history
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}

	dbCheck := h.checkDatabase(ctx)
	response.Checks["history_store"] = dbCheck
	response.DurationMs = time.Since(start).Milliseconds()

	if dbCheck.Status == statusHealthy {
		response.Status = statusHealthy
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = statusUnhealthy
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// External handles the external API dependencies health check endpoint
// @Summary External dependencies health check
// @Description Validates the routing APIs, the Arbitrum RPC and the Hyperliquid info API
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/external [get]
func (h *HealthHandler) External(c *gin.Context) {
	start := time.Now()

	response := HealthResponse{
		Timestamp: start,
		Checks:    make(map[string]HealthCheck),
	}

	baseCtx := context.Background()
	if c.Request != nil {
		baseCtx = c.Request.Context()
	}
	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, probe := range h.probes {
		wg.Add(1)
		go func(probe Probe) {
			defer wg.Done()
			check := h.checkExternal(ctx, probe)
			mu.Lock()
			response.Checks[probe.Name] = check
			mu.Unlock()
		}(probe)
	}

	wg.Wait()
	response.DurationMs = time.Since(start).Milliseconds()

	allHealthy := len(response.Checks) > 0
	for _, check := range response.Checks {
		if check.Status != statusHealthy {
			allHealthy = false
			break
		}
	}

	if allHealthy {
		response.Status = statusHealthy
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = statusUnhealthy
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

// checkDatabase pings the history backend
func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if h.backend == nil {
		check.Status = statusUnhealthy
		check.Error = "history store not available"
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.backend.Ping(pingCtx); err != nil {
		check.Status = statusUnhealthy
		if pingCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = err.Error()
		}
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	check.Status = statusHealthy
	check.Latency = time.Since(start).Milliseconds()
	check.Metadata["driver"] = h.backend.Name()

	if db, ok := kvpostgres.DB(h.backend); ok {
		if sqlDB, err := db.DB(); err == nil {
			stats := sqlDB.Stats()
			check.Metadata["connection_pool"] = map[string]interface{}{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"max_open":         stats.MaxOpenConnections,
			}
		}
	}

	return check
}

// checkExternal runs one probe, unless its circuit breaker is already open
func (h *HealthHandler) checkExternal(ctx context.Context, probe Probe) HealthCheck {
	start := time.Now()

	check := HealthCheck{
		Metadata: make(map[string]interface{}),
	}

	if breaker, ok := h.breakers[probe.Name]; ok {
		state := breaker.State()
		check.Metadata["circuit_breaker"] = state.String()
		if state == gobreaker.StateOpen {
			check.Status = statusUnhealthy
			check.Error = "circuit breaker open"
			check.Latency = time.Since(start).Milliseconds()
			return check
		}
	}

	if probe.Check == nil {
		check.Status = statusUnhealthy
		check.Error = fmt.Sprintf("%s not available", probe.Name)
		check.Latency = time.Since(start).Milliseconds()
		return check
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- probe.Check(checkCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			check.Status = statusUnhealthy
			check.Error = err.Error()
		} else {
			check.Status = statusHealthy
		}
	case <-checkCtx.Done():
		check.Status = statusUnhealthy
		if checkCtx.Err() == context.DeadlineExceeded {
			check.Error = "timeout"
		} else {
			check.Error = checkCtx.Err().Error()
		}
	}

	check.Latency = time.Since(start).Milliseconds()
	return check
}
