package history

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
	"github.com/dwarvesf/perp-bridge/internal/orchestrator"
	"github.com/dwarvesf/perp-bridge/internal/store/history"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/view"
)

// Transaction is a history entry plus explorer links for its hashes.
type Transaction struct {
	model.BridgeTransaction
	Links map[string]string `json:"links,omitempty"`
}

type ListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
}

type handler struct {
	history         history.IStore
	orchestrator    orchestrator.IOrchestrator
	logger          *logger.Logger
	appConfig       *config.AppConfig
	metricsRecorder *monitoring.BusinessMetricsRecorder
}

func New(historyStore history.IStore, orchestrator orchestrator.IOrchestrator, logger *logger.Logger, appConfig *config.AppConfig, metricsRecorder *monitoring.BusinessMetricsRecorder) IHandler {
	return &handler{
		history:         historyStore,
		orchestrator:    orchestrator,
		logger:          logger,
		appConfig:       appConfig,
		metricsRecorder: metricsRecorder,
	}
}

// List godoc
// @Summary List bridge history
// @Description Returns every recorded bridge attempt, newest first
// @id listHistory
// @Tags History
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /history [get]
func (h *handler) List(c *gin.Context) {
	start := time.Now()
	list, err := h.history.List(c.Request.Context())
	h.record("list", err, start)
	if err != nil {
		h.logger.Error("[List][List]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "can't list history"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](h.listResponse(list), nil, "", ""))
}

// Pending godoc
// @Summary List unfinished bridge attempts
// @Description Returns history entries that are still pending or in progress
// @id listPendingHistory
// @Tags History
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /history/pending [get]
func (h *handler) Pending(c *gin.Context) {
	start := time.Now()
	list, err := h.history.ListPending(c.Request.Context())
	h.record("list_pending", err, start)
	if err != nil {
		h.logger.Error("[Pending][ListPending]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "can't list pending history"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](h.listResponse(list), nil, "", ""))
}

// Get godoc
// @Summary Get a bridge attempt
// @id getHistory
// @Tags History
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} Transaction
// @Failure 404 {object} view.ErrorResponse
// @Router /history/{id} [get]
func (h *handler) Get(c *gin.Context) {
	id := c.Param("id")
	start := time.Now()
	tx, err := h.history.Get(c.Request.Context(), id)
	h.record("get", err, start)
	if err != nil {
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](nil, err, id, "can't get transaction"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](h.withLinks(*tx), nil, "", ""))
}

// Delete godoc
// @Summary Remove a bridge attempt
// @id deleteHistory
// @Tags History
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} view.MessageResponse
// @Failure 404 {object} view.ErrorResponse
// @Router /history/{id} [delete]
func (h *handler) Delete(c *gin.Context) {
	id := c.Param("id")
	start := time.Now()
	err := h.history.Remove(c.Request.Context(), id)
	h.record("remove", err, start)
	if err != nil {
		h.logger.Error("[Delete][Remove]", map[string]string{
			"tx_id": id,
			"error": err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](nil, err, id, "can't remove transaction"))
		return
	}

	h.refreshPending(c)
	c.JSON(http.StatusOK, view.CreateResponse[any](view.MessageResponse{Message: "transaction removed"}, nil, "", ""))
}

// Clear godoc
// @Summary Clear bridge history
// @id clearHistory
// @Tags History
// @Produce json
// @Success 200 {object} view.MessageResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /history [delete]
func (h *handler) Clear(c *gin.Context) {
	start := time.Now()
	err := h.history.Clear(c.Request.Context())
	h.record("clear", err, start)
	if err != nil {
		h.logger.Error("[Clear][Clear]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "can't clear history"))
		return
	}

	h.refreshPending(c)
	c.JSON(http.StatusOK, view.CreateResponse[any](view.MessageResponse{Message: "history cleared"}, nil, "", ""))
}

func (h *handler) refreshPending(c *gin.Context) {
	if h.orchestrator == nil {
		return
	}
	if _, err := h.orchestrator.RefreshPending(c.Request.Context()); err != nil {
		h.logger.Warn("[refreshPending]", map[string]string{
			"error": err.Error(),
		})
	}
}

func (h *handler) listResponse(list []model.BridgeTransaction) ListResponse {
	out := ListResponse{
		Transactions: make([]Transaction, 0, len(list)),
		Total:        len(list),
	}
	for _, tx := range list {
		out.Transactions = append(out.Transactions, h.withLinks(tx))
	}
	return out
}

func (h *handler) withLinks(tx model.BridgeTransaction) Transaction {
	out := Transaction{BridgeTransaction: tx}
	explorers := map[string]string{
		consts.HOP_SKIP: h.appConfig.Preset.DydxExplorerURL,
		consts.HOP_LIFI: h.appConfig.Preset.ArbitrumExplorerURL,
	}
	for hop, hash := range tx.TxHashes {
		base := explorers[hop]
		if base == "" || hash == "" {
			continue
		}
		if out.Links == nil {
			out.Links = map[string]string{}
		}
		out.Links[hop] = base + hash
	}
	return out
}

func (h *handler) record(operation string, err error, start time.Time) {
	if h.metricsRecorder == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	h.metricsRecorder.RecordHistoryOperation(operation, status, time.Since(start).Seconds())
}
