package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/types/environments"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

func TestCallUptimeWebhook(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(logger.New(environments.Test))
	c.CallUptimeWebhook(context.Background(), srv.URL)
	c.CallUptimeWebhook(context.Background(), "")

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestPostEvent(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := New(logger.New(environments.Test))
	err := c.PostEvent(context.Background(), srv.URL, map[string]string{"id": "tx_1", "status": "complete"})
	require.NoError(t, err)
	assert.Equal(t, "complete", got["status"])
}
