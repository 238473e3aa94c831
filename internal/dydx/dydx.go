// Package dydx reads account balances from the dYdX chain LCD endpoint.
package dydx

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const AddressPrefix = "dydx"

type IClient interface {
	GetBalances(ctx context.Context, address string) ([]Coin, error)
	GetUSDCBalance(ctx context.Context, address string) (decimal.Decimal, error)
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type balancesResponse struct {
	Balances []Coin `json:"balances"`
}

type Dydx struct {
	client    *resty.Client
	logger    *logger.Logger
	policy    retry.Policy
	usdcDenom string
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IClient {
	client := resty.New().SetBaseURL(appConfig.Dydx.LCDURL).SetTimeout(15 * time.Second)
	return NewWithClient(client, logger, retry.DefaultPolicy(), appConfig.Dydx.USDCDenom)
}

func NewWithClient(client *resty.Client, logger *logger.Logger, policy retry.Policy, usdcDenom string) *Dydx {
	return &Dydx{client: client, logger: logger, policy: policy, usdcDenom: usdcDenom}
}

func (d *Dydx) GetBalances(ctx context.Context, address string) ([]Coin, error) {
	p := d.policy
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		d.logger.Warn("[dydx.GetBalances][retry]", map[string]string{
			"address": address,
			"attempt": strconv.Itoa(attempt),
			"error":   err.Error(),
		})
	}

	body, err := retry.Do(ctx, p, func(ctx context.Context) ([]byte, error) {
		resp, err := d.client.R().SetContext(ctx).Get(fmt.Sprintf("/cosmos/bank/v1beta1/balances/%s", address))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, errs.FromResponse(resp.StatusCode(), resp.Status(), resp.Body())
		}
		return resp.Body(), nil
	})
	if err != nil {
		d.logger.Error("[dydx.GetBalances]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		return nil, err
	}

	var out balancesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode balances response")
	}
	return out.Balances, nil
}

// GetUSDCBalance returns the USDC balance in whole units. A missing denom
// means zero.
func (d *Dydx) GetUSDCBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	balances, err := d.GetBalances(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	for _, c := range balances {
		if c.Denom != d.usdcDenom {
			continue
		}
		amount, err := decimal.NewFromString(c.Amount)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "invalid balance amount %q", c.Amount)
		}
		return amount.Shift(-consts.USDC_DECIMALS), nil
	}
	return decimal.Zero, nil
}

// ValidateAddress checks that address is a bech32 account address with the
// dydx prefix.
func ValidateAddress(address string) error {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return errors.Wrapf(err, "invalid dydx address %q", address)
	}
	if hrp != AddressPrefix {
		return fmt.Errorf("address %q has prefix %q, expected %q", address, hrp, AddressPrefix)
	}
	if len(data) == 0 {
		return fmt.Errorf("address %q has no payload", address)
	}
	return nil
}
