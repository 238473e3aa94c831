package skipgo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	DefaultAPIURL    = "https://api.skip.build/v2"
	requestTimeout   = 30 * time.Second
	statusRetryLimit = 2
)

type SkipGo struct {
	client *resty.Client
	logger *logger.Logger
	policy retry.Policy
	goFast bool
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IClient {
	apiURL := appConfig.SkipGo.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return NewWithClient(resty.New().SetBaseURL(apiURL).SetTimeout(requestTimeout), logger, retry.DefaultPolicy(), appConfig.SkipGo.GoFast)
}

// NewWithClient builds a client on top of an existing resty client. Tests use
// it to point at an httptest server and shorten the retry delays.
func NewWithClient(client *resty.Client, logger *logger.Logger, policy retry.Policy, goFast bool) *SkipGo {
	client.SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &SkipGo{
		client: client,
		logger: logger,
		policy: policy,
		goFast: goFast,
	}
}

func (s *SkipGo) withRetry(op string, maxAttempts int) retry.Policy {
	p := s.policy
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		s.logger.Warn(fmt.Sprintf("[skipgo.%s][retry]", op), map[string]string{
			"attempt": strconv.Itoa(attempt),
			"delay":   delay.String(),
			"error":   err.Error(),
		})
	}
	return p
}

func (s *SkipGo) do(ctx context.Context, op string, maxAttempts int, build func(r *resty.Request) (*resty.Response, error)) ([]byte, error) {
	return retry.Do(ctx, s.withRetry(op, maxAttempts), func(ctx context.Context) ([]byte, error) {
		resp, err := build(s.client.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
		}
		return resp.Body(), nil
	})
}

func (s *SkipGo) GetChains(ctx context.Context) ([]Chain, error) {
	body, err := s.do(ctx, "GetChains", 0, func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/info/chains")
	})
	if err != nil {
		s.logger.Error("[skipgo.GetChains]", map[string]string{"error": err.Error()})
		return nil, err
	}

	var out chainsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode chains response")
	}
	return out.Chains, nil
}

func (s *SkipGo) GetRoute(ctx context.Context, req RouteRequest) (*model.RouteQuote, error) {
	bridges := req.Bridges
	if len(bridges) == 0 {
		bridges = DefaultBridges
	}
	payload := routeRequestBody{
		SourceAssetDenom:          req.SourceDenom,
		SourceAssetChainID:        req.SourceChainID,
		DestAssetDenom:            req.DestDenom,
		DestAssetChainID:          req.DestChainID,
		AmountIn:                  req.AmountIn,
		CumulativeAffiliateFeeBps: "0",
		AllowUnsafe:               true,
		SmartRelay:                true,
		GoFast:                    req.GoFast || s.goFast,
		Bridges:                   bridges,
		SmartSwapOptions:          smartSwapOptions{SplitRoutes: false, EVMSwaps: true},
	}

	body, err := s.do(ctx, "GetRoute", 0, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(payload).Post("/fungible/route")
	})
	if err != nil {
		s.logger.Error("[skipgo.GetRoute]", map[string]string{
			"amountIn": req.AmountIn,
			"error":    err.Error(),
		})
		return nil, err
	}

	return normalizeRoute(body)
}

func (s *SkipGo) GetSignablePayloads(ctx context.Context, route *model.RouteQuote, addresses []string) ([]model.SignablePayload, error) {
	if route == nil {
		return nil, errs.Newf(errs.ErrInvalidRoute, "Invalid route response from Skip API")
	}
	if err := checkAddressList(route, addresses); err != nil {
		s.logger.Error("[skipgo.GetSignablePayloads][checkAddressList]", map[string]string{
			"required": strconv.Itoa(len(route.RequiredChainAddresses)),
			"given":    strconv.Itoa(len(addresses)),
			"error":    err.Error(),
		})
		return nil, err
	}
	payload := msgsRequestBody{
		SourceAssetDenom:         route.SourceDenom,
		SourceAssetChainID:       route.SourceChainID,
		DestAssetDenom:           route.DestDenom,
		DestAssetChainID:         route.DestChainID,
		AmountIn:                 route.AmountIn,
		AmountOut:                route.AmountOut,
		AddressList:              addresses,
		Operations:               route.Operations,
		SlippageTolerancePercent: "1",
	}

	body, err := s.do(ctx, "GetSignablePayloads", 0, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(payload).Post("/fungible/msgs")
	})
	if err != nil {
		s.logger.Error("[skipgo.GetSignablePayloads]", map[string]string{"error": err.Error()})
		return nil, err
	}

	return normalizeMsgs(body)
}

func (s *SkipGo) GetStatus(ctx context.Context, txHash, chainID string) (*TxStatus, error) {
	body, err := s.do(ctx, "GetStatus", statusRetryLimit, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(statusRequestBody{TxHash: txHash, ChainID: chainID}).Post("/tx/status")
	})
	if err != nil {
		return nil, err
	}
	return normalizeStatus(body)
}

// WaitForCompletion polls GetStatus until the transfer reaches a terminal
// state. A failed or abandoned transfer is reported in the result, not as an
// error; errors are reserved for timeouts and repeated status failures.
func (s *SkipGo) WaitForCompletion(ctx context.Context, txHash, chainID string, cfg poller.Config) (*CompletionResult, error) {
	if cfg.OnError == nil {
		cfg.OnError = func(err error, attempt int, consecutive int) {
			s.logger.Warn("[skipgo.WaitForCompletion][GetStatus]", map[string]string{
				"txHash":      txHash,
				"attempt":     strconv.Itoa(attempt),
				"consecutive": strconv.Itoa(consecutive),
				"error":       err.Error(),
			})
		}
	}

	outcome, err := poller.Poll(ctx, cfg, func(ctx context.Context, attempt int) (poller.Status, *TxStatus, error) {
		status, err := s.GetStatus(ctx, txHash, chainID)
		if err != nil {
			return poller.Pending, nil, err
		}
		switch {
		case status.IsSuccess():
			return poller.Success, status, nil
		case status.IsFailure():
			return poller.Failure, status, nil
		}
		return poller.Pending, status, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTooManyErrors):
			return nil, errs.Newf(errs.ErrTooManyErrors, "Failed to check transaction status after %d consecutive errors: %s",
				cfg.MaxConsecutiveErrors, causeMessage(err))
		case errors.Is(err, errs.ErrPollTimeout):
			return nil, errs.Newf(errs.ErrPollTimeout,
				"Transaction status check timed out after %d attempts. Your transaction may still complete - check the explorer.",
				outcome.Attempts)
		}
		return nil, err
	}

	result := &CompletionResult{
		Success:  outcome.Succeeded(),
		Status:   outcome.Value,
		Attempts: outcome.Attempts,
	}
	if !result.Success {
		result.Error = "Transaction failed or was abandoned"
		if outcome.Value != nil && outcome.Value.Error != "" {
			result.Error = outcome.Value.Error
		}
	}
	return result, nil
}

// causeMessage strips the poller prefix and keeps the last check error.
func causeMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "errors: "); i >= 0 {
		return msg[i+len("errors: "):]
	}
	return msg
}
