package lifi

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
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	DefaultAPIURL  = "https://li.quest/v1"
	requestTimeout = 30 * time.Second
)

type Lifi struct {
	client *resty.Client
	logger *logger.Logger
	policy retry.Policy
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IClient {
	apiURL := appConfig.Lifi.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return NewWithClient(resty.New().SetBaseURL(apiURL).SetTimeout(requestTimeout), logger, retry.DefaultPolicy())
}

func NewWithClient(client *resty.Client, logger *logger.Logger, policy retry.Policy) *Lifi {
	client.SetHeader("Accept", "application/json")
	return &Lifi{client: client, logger: logger, policy: policy}
}

func (l *Lifi) do(ctx context.Context, op string, build func(r *resty.Request) (*resty.Response, error)) ([]byte, error) {
	p := l.policy
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		l.logger.Warn(fmt.Sprintf("[lifi.%s][retry]", op), map[string]string{
			"attempt": strconv.Itoa(attempt),
			"delay":   delay.String(),
			"error":   err.Error(),
		})
	}

	return retry.Do(ctx, p, func(ctx context.Context) ([]byte, error) {
		resp, err := build(l.client.R().SetContext(ctx))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
		}
		return resp.Body(), nil
	})
}

func (l *Lifi) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.Order == "" {
		req.Order = OrderFastest
	}
	if req.Slippage == 0 {
		req.Slippage = DefaultSlippage
	}
	if req.ToChain == "" {
		req.ToChain = ToolHyperliquid
	}
	if req.ToToken == "" {
		req.ToToken = "USDC"
	}

	body, err := l.do(ctx, "GetQuote", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(map[string]string{
			"fromChain":   req.FromChain,
			"toChain":     req.ToChain,
			"fromToken":   req.FromToken,
			"toToken":     req.ToToken,
			"fromAmount":  req.FromAmount,
			"fromAddress": req.FromAddress,
			"order":       req.Order,
			"slippage":    strconv.FormatFloat(req.Slippage, 'f', -1, 64),
		}).Get("/quote")
	})
	if err != nil {
		l.logger.Error("[lifi.GetQuote]", map[string]string{
			"fromAmount": req.FromAmount,
			"error":      err.Error(),
		})
		return nil, err
	}

	var quote Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote response")
	}
	return &quote, nil
}

func (l *Lifi) GetRoutes(ctx context.Context, req RoutesRequest) ([]Route, error) {
	opts := routesOptions{
		Order:          req.Order,
		Slippage:       req.Slippage,
		MaxPriceImpact: req.MaxPriceImpact,
	}
	if opts.Order == "" {
		opts.Order = OrderRecommended
	}
	if opts.Slippage == 0 {
		opts.Slippage = DefaultSlippage
	}
	if opts.MaxPriceImpact == 0 {
		opts.MaxPriceImpact = DefaultMaxPriceImpact
	}

	payload := routesRequestBody{
		FromChainID:      req.FromChainID,
		FromAmount:       req.FromAmount,
		FromTokenAddress: req.FromTokenAddress,
		FromAddress:      req.FromAddress,
		ToChainID:        req.ToChainID,
		ToTokenAddress:   req.ToTokenAddress,
		Options:          opts,
	}

	body, err := l.do(ctx, "GetRoutes", func(r *resty.Request) (*resty.Response, error) {
		return r.SetHeader("Content-Type", "application/json").SetBody(payload).Post("/advanced/routes")
	})
	if err != nil {
		l.logger.Error("[lifi.GetRoutes]", map[string]string{"error": err.Error()})
		return nil, err
	}

	var out routesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode routes response")
	}
	return out.Routes, nil
}

func (l *Lifi) GetStatus(ctx context.Context, req StatusRequest) (*Status, error) {
	params := map[string]string{"txHash": req.TxHash}
	if req.Bridge != "" {
		params["bridge"] = req.Bridge
	}
	if req.FromChain != "" {
		params["fromChain"] = req.FromChain
	}
	if req.ToChain != "" {
		params["toChain"] = req.ToChain
	}

	body, err := l.do(ctx, "GetStatus", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(params).Get("/status")
	})
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, errors.Wrap(err, "failed to decode status response")
	}
	if status.Message == "" {
		var alt struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &alt); err == nil {
			status.Message = alt.Message
		}
	}
	return &status, nil
}

// WaitForCompletion polls the transfer status until it is DONE or FAILED.
func (l *Lifi) WaitForCompletion(ctx context.Context, req StatusRequest, cfg poller.Config) (*CompletionResult, error) {
	if cfg.OnError == nil {
		cfg.OnError = func(err error, attempt int, consecutive int) {
			l.logger.Warn("[lifi.WaitForCompletion][GetStatus]", map[string]string{
				"txHash":      req.TxHash,
				"attempt":     strconv.Itoa(attempt),
				"consecutive": strconv.Itoa(consecutive),
				"error":       err.Error(),
			})
		}
	}

	outcome, err := poller.Poll(ctx, cfg, func(ctx context.Context, attempt int) (poller.Status, *Status, error) {
		status, err := l.GetStatus(ctx, req)
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
		if errors.Is(err, errs.ErrPollTimeout) {
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
		result.Error = "Transaction failed"
		if s := outcome.Value; s != nil {
			switch {
			case s.Substatus != "":
				result.Error = s.Substatus
			case s.Message != "":
				result.Error = s.Message
			}
		}
	}
	return result, nil
}

func (l *Lifi) GetChains(ctx context.Context) ([]Chain, error) {
	body, err := l.do(ctx, "GetChains", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/chains")
	})
	if err != nil {
		return nil, err
	}

	var out chainsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode chains response")
	}
	return out.Chains, nil
}

func (l *Lifi) GetTokens(ctx context.Context, chainIDs ...string) (map[string][]Token, error) {
	body, err := l.do(ctx, "GetTokens", func(r *resty.Request) (*resty.Response, error) {
		if len(chainIDs) > 0 {
			r.SetQueryParam("chains", strings.Join(chainIDs, ","))
		}
		return r.Get("/tokens")
	})
	if err != nil {
		return nil, err
	}

	var out tokensResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode tokens response")
	}
	return out.Tokens, nil
}
