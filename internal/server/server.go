package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/dydx"
	"github.com/dwarvesf/perp-bridge/internal/handler"
	"github.com/dwarvesf/perp-bridge/internal/handler/health"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/orchestrator"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/store"
	"github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/telemetry"
	transport "github.com/dwarvesf/perp-bridge/internal/transport/http"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/utils/webhook"
	"github.com/dwarvesf/perp-bridge/internal/wallet"
)

const (
	reconcileTimeout = 5 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)
	defer logger.Sync()

	if err := appConfig.Validate(); err != nil {
		logger.Error("Invalid configuration", map[string]string{
			"error": err.Error(),
		})
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	apiMetrics := monitoring.NewExternalAPIMetrics()
	apiMetrics.MustRegister(registry)
	httpMetrics := monitoring.NewHTTPMetrics()
	httpMetrics.MustRegister(registry)
	jobMetrics := monitoring.NewBackgroundJobMetrics()
	jobMetrics.MustRegister(registry)
	recorder := monitoring.NewBusinessMetricsRecorder(httpMetrics)

	backend, err := store.NewBackend(appConfig, logger)
	if err != nil {
		logger.Error("Failed to open history backend")
		return
	}
	defer backend.Close()

	historyStore := history.New(backend, appConfig.History.Key, appConfig.History.MaxItems, logger)

	rpc, err := arbrpc.New(appConfig, logger)
	if err != nil {
		logger.Error("Failed to init arbitrum rpc")
		return
	}

	cfgs := monitoring.CircuitBreakerConfigs
	rpcBreaker := monitoring.NewCircuitBreakerArbRPC(rpc, cfgs[monitoring.ArbitrumRPC], apiMetrics, logger)
	skipBreaker := monitoring.NewCircuitBreakerSkipGo(skipgo.New(appConfig, logger), cfgs[monitoring.SkipAPI], apiMetrics, logger)
	dydxBreaker := monitoring.NewCircuitBreakerDydx(dydx.New(appConfig, logger), cfgs[monitoring.DydxLCD], apiMetrics, logger)

	wallets := &wallet.Wallets{}
	if signer, err := wallet.LoadEVMSigner(appConfig, logger); err != nil {
		logger.Warn("EVM signer unavailable, bridge runs are disabled", map[string]string{
			"error": err.Error(),
		})
	} else {
		wallets.EVM = signer
	}
	if appConfig.Dydx.SignerURL != "" {
		wallets.Cosmos = wallet.NewRemoteCosmosSigner(appConfig, logger)
	} else {
		logger.Warn("COSMOS_SIGNER_URL is not set, bridge runs are disabled")
	}

	bridge := monitoring.NewCircuitBreakerHyperliquid(
		hyperliquid.New(appConfig, logger, rpcBreaker, wallets.EVM),
		cfgs[monitoring.HyperliquidInfo], apiMetrics, logger)

	breakers := []monitoring.StateReporter{rpcBreaker, skipBreaker, dydxBreaker, bridge}
	probes := []health.Probe{
		health.SkipProbe(skipBreaker),
		health.ArbitrumProbe(rpcBreaker),
		health.HyperliquidProbe(bridge),
	}

	// a nil *CircuitBreakerLifi must not reach the orchestrator as a non-nil interface
	var lifiClient lifi.IClient
	if appConfig.Lifi.Enabled {
		lifiBreaker := monitoring.NewCircuitBreakerLifi(lifi.New(appConfig, logger), cfgs[monitoring.LifiAPI], apiMetrics, logger)
		lifiClient = lifiBreaker
		breakers = append(breakers, lifiBreaker)
		probes = append(probes, health.LifiProbe(lifiBreaker))
	}

	orch := orchestrator.New(appConfig, logger, wallets, skipBreaker, lifiClient, bridge, dydxBreaker, historyStore,
		orchestrator.WithMetrics(recorder))
	if _, err := orch.RefreshPending(context.Background()); err != nil {
		logger.Warn("Failed to count pending transactions", map[string]string{
			"error": err.Error(),
		})
	}

	jobStatusManager := monitoring.NewJobStatusManager(logger, jobMetrics)
	defer jobStatusManager.Stop()

	tele := telemetry.New(appConfig, logger, historyStore, skipBreaker, rpcBreaker, jobMetrics)
	tele.SetPendingRefresher(orch.RefreshPending)
	reconcileJob := monitoring.NewInstrumentedJobWithWebhook(
		consts.JOB_HISTORY_RECONCILE,
		tele.ReconcileJob(),
		jobStatusManager,
		logger,
		reconcileTimeout,
		webhook.New(logger),
		appConfig.Jobs.UptimeWebhookURL,
	)

	c := cron.New()
	if _, err := c.AddFunc(appConfig.Jobs.ReconcilePeriod, reconcileJob.Execute); err != nil {
		logger.Error("Failed to schedule reconcile job", map[string]string{
			"period": appConfig.Jobs.ReconcilePeriod,
			"error":  err.Error(),
		})
		return
	}
	c.Start()

	h := handler.New(appConfig, logger, handler.Deps{
		Orchestrator:     orch,
		History:          historyStore,
		Backend:          backend,
		Probes:           probes,
		Breakers:         breakers,
		JobStatusManager: jobStatusManager,
		MetricsRecorder:  recorder,
		MetricsRegistry:  registry,
	})

	srv := &http.Server{
		Addr:    ":" + appConfig.ApiServer.Port,
		Handler: transport.NewHttpServer(appConfig, logger, h, httpMetrics),
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server stopped", map[string]string{
				"error": err.Error(),
			})
		}
	}()
	logger.Info("HTTP server started", map[string]string{
		"port":    appConfig.ApiServer.Port,
		"network": appConfig.Network,
	})

	<-done
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown", map[string]string{
			"error": err.Error(),
		})
	}

	<-c.Stop().Done()

	// a run in flight finishes its current hop or hits Bridge.RunTimeout
	orch.Wait()
	logger.Info("Shutdown complete")
}
