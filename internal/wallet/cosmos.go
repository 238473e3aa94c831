package wallet

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// RemoteCosmosSigner talks to a signing service that holds the dYdX key.
// Requests are never retried: a resent broadcast could move funds twice.
type RemoteCosmosSigner struct {
	client  *resty.Client
	logger  *logger.Logger
	address string
}

type accountsResponse struct {
	Accounts []struct {
		Address string `json:"address"`
	} `json:"accounts"`
}

func NewRemoteCosmosSigner(appConfig *config.AppConfig, logger *logger.Logger) *RemoteCosmosSigner {
	client := resty.New().
		SetBaseURL(appConfig.Dydx.SignerURL).
		SetTimeout(60 * time.Second)
	if appConfig.Dydx.SignerToken != "" {
		client.SetAuthToken(appConfig.Dydx.SignerToken)
	}
	return NewRemoteCosmosSignerWithClient(client, logger, appConfig.Dydx.Address)
}

func NewRemoteCosmosSignerWithClient(client *resty.Client, logger *logger.Logger, address string) *RemoteCosmosSigner {
	return &RemoteCosmosSigner{client: client, logger: logger, address: address}
}

// Address returns the configured address or asks the signer for its first
// account.
func (s *RemoteCosmosSigner) Address(ctx context.Context) (string, error) {
	if s.address != "" {
		return s.address, nil
	}

	var out accountsResponse
	resp, err := s.client.R().SetContext(ctx).SetResult(&out).Get("/accounts")
	if err != nil {
		return "", errors.Wrap(err, "failed to reach cosmos signer")
	}
	if resp.IsError() {
		return "", errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
	}
	if len(out.Accounts) == 0 || out.Accounts[0].Address == "" {
		return "", errs.ErrWalletNotConnected
	}

	s.address = out.Accounts[0].Address
	return s.address, nil
}

func (s *RemoteCosmosSigner) SignAndBroadcast(ctx context.Context, req model.CosmosSignRequest) (*model.BroadcastResult, error) {
	var out model.BroadcastResult
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/sign-and-broadcast")
	if err != nil {
		s.logger.Error("[RemoteCosmosSigner.SignAndBroadcast]", map[string]string{
			"chainID": req.ChainID,
			"error":   err.Error(),
		})
		return nil, err
	}
	if resp.IsError() {
		return nil, signerError(resp)
	}

	s.logger.Info("[RemoteCosmosSigner.SignAndBroadcast]", map[string]string{
		"chainID": req.ChainID,
		"txHash":  out.TxHash,
	})
	return &out, nil
}

// signerError returns a WalletError when the signer answered with a wallet
// code, and the plain HTTP error otherwise.
func signerError(resp *resty.Response) error {
	var body struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && len(body.Code) > 0 {
		code := strings.Trim(string(body.Code), `"`)
		if code != "" && code != "null" {
			return &errs.WalletError{Code: code, Message: body.Message}
		}
	}
	return errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
}
