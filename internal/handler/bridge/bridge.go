package bridge

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/orchestrator"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/view"
)

type QuoteRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=dydx-to-hl hl-to-dydx"`
}

type RunRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Direction string `json:"direction" validate:"omitempty,oneof=dydx-to-hl hl-to-dydx"`
}

type ResumeRequest struct {
	Amount string `json:"amount"`
	TxID   string `json:"tx_id" validate:"omitempty,startswith=tx_"`
}

type EstimateGasRequest struct {
	Amount string `form:"amount" binding:"required"`
}

type StateResponse struct {
	Run     orchestrator.RunContext `json:"run"`
	Pending int                     `json:"pending"`
}

type handler struct {
	orchestrator orchestrator.IOrchestrator
	logger       *logger.Logger
	appConfig    *config.AppConfig
	validate     *validator.Validate
}

func New(orchestrator orchestrator.IOrchestrator, logger *logger.Logger, appConfig *config.AppConfig) IHandler {
	return &handler{
		orchestrator: orchestrator,
		logger:       logger,
		appConfig:    appConfig,
		validate:     validator.New(),
	}
}

// Quote godoc
// @Summary Quote a bridge run
// @Description Estimates both hops (dYdX to Arbitrum, Arbitrum to Hyperliquid) for an amount
// @id quoteBridge
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote request parameters"
// @Success 200 {object} model.BridgeQuote
// @Failure 400 {object} view.ErrorResponse
// @Failure 502 {object} view.ErrorResponse
// @Router /bridge/quote [post]
func (h *handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[Quote][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "Invalid amount"))
		return
	}

	quote, err := h.orchestrator.Quote(c.Request.Context(), amount, model.Direction(req.Direction))
	if err != nil {
		h.logger.Error("[Quote][Quote]", map[string]string{
			"amount": req.Amount,
			"error":  err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](nil, err, req, "can't get quote"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](quote, nil, "", ""))
}

// Run godoc
// @Summary Start a bridge run
// @Description Validates the amount against the dYdX balance and starts a run in the background
// @id runBridge
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body RunRequest true "Run request parameters"
// @Success 202 {object} orchestrator.RunContext
// @Failure 400 {object} view.ErrorResponse
// @Failure 409 {object} view.ErrorResponse
// @Router /bridge/run [post]
func (h *handler) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[Run][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	direction := model.Direction(req.Direction)
	validation := h.orchestrator.ValidateAmount(c.Request.Context(), req.Amount, direction)
	if !validation.Valid {
		c.JSON(http.StatusBadRequest, view.CreateValidationResponse(validation.Errors, req, "invalid amount"))
		return
	}

	run, err := h.orchestrator.Start(orchestrator.RunRequest{
		Amount:    validation.Amount,
		Direction: direction,
	})
	if err != nil {
		h.logger.Error("[Run][Start]", map[string]string{
			"amount": req.Amount,
			"error":  err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](run, err, req, "can't start bridge run"))
		return
	}

	h.logger.Info("[Run] bridge run started", map[string]string{
		"amount": validation.Amount.String(),
	})
	c.JSON(http.StatusAccepted, view.CreateResponse[any](run, nil, "", "bridge run started"))
}

// Resume godoc
// @Summary Resume a bridge run
// @Description Continues a run from its history entry, or sends the Arbitrum balance to Hyperliquid
// @id resumeBridge
// @Tags Bridge
// @Accept json
// @Produce json
// @Param request body ResumeRequest false "Resume request parameters"
// @Success 202 {object} orchestrator.RunContext
// @Failure 400 {object} view.ErrorResponse
// @Failure 404 {object} view.ErrorResponse
// @Failure 409 {object} view.ErrorResponse
// @Router /bridge/resume [post]
func (h *handler) Resume(c *gin.Context) {
	var req ResumeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("[Resume][ShouldBindJSON]", map[string]string{
				"error": err.Error(),
			})
			c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	resume := orchestrator.ResumeRequest{TxID: req.TxID}
	if req.Amount != "" {
		v := orchestrator.ValidateAmount(req.Amount, nil, decimal.Zero)
		if !v.Valid {
			c.JSON(http.StatusBadRequest, view.CreateValidationResponse(v.Errors, req, "invalid amount"))
			return
		}
		resume.Amount = &v.Amount
	}

	run, err := h.orchestrator.StartResume(resume)
	if err != nil {
		h.logger.Error("[Resume][StartResume]", map[string]string{
			"tx_id": req.TxID,
			"error": err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](run, err, req, "can't resume bridge run"))
		return
	}

	c.JSON(http.StatusAccepted, view.CreateResponse[any](run, nil, "", "bridge run resumed"))
}

// State godoc
// @Summary Current run
// @Description Returns the current run context and the number of unfinished history entries
// @id bridgeState
// @Tags Bridge
// @Produce json
// @Success 200 {object} StateResponse
// @Router /bridge/state [get]
func (h *handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, view.CreateResponse[any](StateResponse{
		Run:     h.orchestrator.Snapshot(),
		Pending: h.orchestrator.PendingCount(),
	}, nil, "", ""))
}

// Balances godoc
// @Summary USDC balances
// @Description Reads the USDC balance on dYdX, Arbitrum and Hyperliquid
// @id bridgeBalances
// @Tags Bridge
// @Produce json
// @Success 200 {object} orchestrator.Balances
// @Failure 503 {object} view.ErrorResponse
// @Router /bridge/balances [get]
func (h *handler) Balances(c *gin.Context) {
	balances, err := h.orchestrator.Balances(c.Request.Context())
	if err != nil {
		h.logger.Error("[Balances][Balances]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](nil, err, "", "can't read balances"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](balances, nil, "", ""))
}

// EstimateGas godoc
// @Summary Estimate hop-2 gas
// @Description Estimates the gas of the Arbitrum transfer to the Hyperliquid bridge
// @id bridgeEstimateGas
// @Tags Bridge
// @Produce json
// @Param amount query string true "USDC amount"
// @Success 200 {object} hyperliquid.GasEstimate
// @Failure 400 {object} view.ErrorResponse
// @Router /bridge/estimate-gas [get]
func (h *handler) EstimateGas(c *gin.Context) {
	var req EstimateGasRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "Invalid amount"))
		return
	}

	estimate, err := h.orchestrator.EstimateGas(c.Request.Context(), amount)
	if err != nil {
		h.logger.Error("[EstimateGas][EstimateGas]", map[string]string{
			"amount": req.Amount,
			"error":  err.Error(),
		})
		c.JSON(view.ErrorStatus(err), view.CreateResponse[any](nil, err, req, "can't estimate gas"))
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](estimate, nil, "", ""))
}
