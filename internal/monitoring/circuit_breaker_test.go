package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

type MockSkipGo struct {
	mock.Mock
}

func (m *MockSkipGo) GetChains(ctx context.Context) ([]skipgo.Chain, error) {
	args := m.Called()
	chains, _ := args.Get(0).([]skipgo.Chain)
	return chains, args.Error(1)
}

func (m *MockSkipGo) GetRoute(ctx context.Context, req skipgo.RouteRequest) (*model.RouteQuote, error) {
	args := m.Called(req)
	route, _ := args.Get(0).(*model.RouteQuote)
	return route, args.Error(1)
}

func (m *MockSkipGo) AddressList(ctx context.Context, route *model.RouteQuote, cosmosAddress, evmAddress string) ([]string, error) {
	args := m.Called(route, cosmosAddress, evmAddress)
	addrs, _ := args.Get(0).([]string)
	return addrs, args.Error(1)
}

func (m *MockSkipGo) GetSignablePayloads(ctx context.Context, route *model.RouteQuote, addresses []string) ([]model.SignablePayload, error) {
	args := m.Called(route, addresses)
	payloads, _ := args.Get(0).([]model.SignablePayload)
	return payloads, args.Error(1)
}

func (m *MockSkipGo) GetStatus(ctx context.Context, txHash, chainID string) (*skipgo.TxStatus, error) {
	args := m.Called(txHash, chainID)
	status, _ := args.Get(0).(*skipgo.TxStatus)
	return status, args.Error(1)
}

func (m *MockSkipGo) WaitForCompletion(ctx context.Context, txHash, chainID string, cfg poller.Config) (*skipgo.CompletionResult, error) {
	args := m.Called(txHash, chainID)
	result, _ := args.Get(0).(*skipgo.CompletionResult)
	return result, args.Error(1)
}

func setupTestLogger() *logger.Logger {
	return logger.New("test")
}

func testBreakerConfig(threshold int) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests:                 1,
		Interval:                    30 * time.Second,
		Timeout:                     60 * time.Second,
		ConsecutiveFailureThreshold: threshold,
	}
}

func newTestSkipBreaker(t *testing.T, threshold int) (*CircuitBreakerSkipGo, *MockSkipGo, *prometheus.Registry) {
	t.Helper()
	metrics := NewExternalAPIMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)
	wrapped := &MockSkipGo{}
	return NewCircuitBreakerSkipGo(wrapped, testBreakerConfig(threshold), metrics, setupTestLogger()), wrapped, registry
}

func gatherValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) (float64, bool) {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range mf.GetMetric() {
			for k, v := range labels {
				if getLabelValue(metric.GetLabel(), k) != v {
					continue metrics
				}
			}
			switch mf.GetType() {
			case dto.MetricType_GAUGE:
				return metric.GetGauge().GetValue(), true
			case dto.MetricType_COUNTER:
				return metric.GetCounter().GetValue(), true
			}
		}
	}
	return 0, false
}

func TestCircuitBreaker_InitialState(t *testing.T) {
	cb, _, registry := newTestSkipBreaker(t, 3)

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, SkipAPI, cb.Name())

	state, ok := gatherValue(t, registry, "perp_bridge_circuit_breaker_state", map[string]string{"api_name": SkipAPI})
	require.True(t, ok)
	assert.Equal(t, float64(gobreaker.StateClosed), state)
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	cb, wrapped, registry := newTestSkipBreaker(t, 3)
	wrapped.On("GetStatus", "ABC", "dydx-mainnet-1").Return(nil, errs.NewHTTPError(503, "Service Unavailable", "", ""))

	for i := 0; i < 3; i++ {
		_, err := cb.GetStatus(context.Background(), "ABC", "dydx-mainnet-1")
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.GetStatus(context.Background(), "ABC", "dydx-mainnet-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Contains(t, err.Error(), "skip_api unavailable")
	wrapped.AssertNumberOfCalls(t, "GetStatus", 3)

	calls, ok := gatherValue(t, registry, "perp_bridge_external_api_calls_total", map[string]string{"status": "error"})
	require.True(t, ok)
	assert.Equal(t, float64(3), calls)

	rejected, ok := gatherValue(t, registry, "perp_bridge_external_api_calls_total", map[string]string{"status": "rejected"})
	require.True(t, ok)
	assert.Equal(t, float64(1), rejected)

	state, ok := gatherValue(t, registry, "perp_bridge_circuit_breaker_state", map[string]string{"api_name": SkipAPI})
	require.True(t, ok)
	assert.Equal(t, float64(gobreaker.StateOpen), state)
}

func TestCircuitBreaker_NonTransientErrorsDoNotTrip(t *testing.T) {
	cb, wrapped, _ := newTestSkipBreaker(t, 2)
	invalid := errors.Wrap(errs.ErrInvalidRoute, "Invalid route response from Skip API")
	wrapped.On("GetRoute", mock.Anything).Return(nil, invalid)

	for i := 0; i < 5; i++ {
		_, err := cb.GetRoute(context.Background(), skipgo.RouteRequest{AmountIn: "1000000"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrInvalidRoute))
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	wrapped.AssertNumberOfCalls(t, "GetRoute", 5)
}

func TestCircuitBreaker_PassesResultsThrough(t *testing.T) {
	cb, wrapped, registry := newTestSkipBreaker(t, 3)
	wrapped.On("GetChains").Return([]skipgo.Chain{{ChainID: "noble-1"}}, nil)
	wrapped.On("WaitForCompletion", "ABC", "dydx-mainnet-1").Return(&skipgo.CompletionResult{Success: true}, nil)

	chains, err := cb.GetChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "noble-1", chains[0].ChainID)

	result, err := cb.WaitForCompletion(context.Background(), "ABC", "dydx-mainnet-1", poller.CompletionConfig())
	require.NoError(t, err)
	assert.True(t, result.Success)

	calls, ok := gatherValue(t, registry, "perp_bridge_external_api_calls_total", map[string]string{"status": "success"})
	require.True(t, ok)
	assert.Equal(t, float64(1), calls)
}

func TestCircuitBreaker_RequestTimeout(t *testing.T) {
	metrics := NewExternalAPIMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	b := newBreaker("test_api", testBreakerConfig(3), TimeoutConfig{RequestTimeout: 20 * time.Millisecond}, metrics, setupTestLogger())

	_, err := execute(b, context.Background(), "slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout after 20ms")

	timeouts, ok := gatherValue(t, registry, "perp_bridge_external_api_timeouts_total", map[string]string{"api_name": "test_api"})
	require.True(t, ok)
	assert.Equal(t, float64(1), timeouts)
}

func TestCircuitBreaker_InvalidConfigFallsBackToDefaults(t *testing.T) {
	metrics := NewExternalAPIMetrics()
	cb := NewCircuitBreakerSkipGo(&MockSkipGo{}, CircuitBreakerConfig{}, metrics, setupTestLogger())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		error        error
		expectedType APIErrorType
	}{
		{"Timeout error", errors.New("request timeout after 5s"), ErrorTypeTimeout},
		{"Gateway timeout status", errs.NewHTTPError(504, "Gateway Timeout", "", ""), ErrorTypeTimeout},
		{"Network error", errors.New("network unreachable"), ErrorTypeNetworkError},
		{"Server error status", errs.NewHTTPError(502, "Bad Gateway", "", ""), ErrorTypeServerError},
		{"Client error status", errs.NewHTTPError(400, "Bad Request", "no route found", ""), ErrorTypeClientError},
		{"Wallet rejection", errs.ErrUserRejected, ErrorTypeRejected},
		{"Unknown error", errors.New("unexpected error occurred"), ErrorTypeUnknown},
		{"Nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedType, classifyError(tt.error))
		})
	}
}

func TestCircuitBreakerConfig_Validation(t *testing.T) {
	valid := testBreakerConfig(3)

	zeroRequests := valid
	zeroRequests.MaxRequests = 0

	zeroThreshold := valid
	zeroThreshold.ConsecutiveFailureThreshold = 0

	negativeTimeout := valid
	negativeTimeout.Timeout = -time.Second

	assert.NoError(t, validateCircuitBreakerConfig(valid))
	assert.Error(t, validateCircuitBreakerConfig(zeroRequests))
	assert.Error(t, validateCircuitBreakerConfig(zeroThreshold))
	assert.Error(t, validateCircuitBreakerConfig(negativeTimeout))
}

func TestCircuitBreakerConfig_DefaultValues(t *testing.T) {
	for _, name := range []string{SkipAPI, LifiAPI, ArbitrumRPC, DydxLCD, HyperliquidInfo} {
		t.Run(name, func(t *testing.T) {
			config, ok := CircuitBreakerConfigs[name]
			require.True(t, ok)
			assert.NoError(t, validateCircuitBreakerConfig(config))
			assert.True(t, config.Interval > 0)
			assert.True(t, config.Timeout > 0)
		})
	}
}

func getLabelValue(labels []*dto.LabelPair, name string) string {
	for _, label := range labels {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
