package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
)

func TestStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := New(config.RedisConfig{Addr: addr})
	defer s.Close()

	require.NoError(t, s.Ping(ctx))

	key := "perp-bridge-history-test"
	require.NoError(t, s.Set(ctx, key, []byte(`[]`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestStore_UnreachableServer(t *testing.T) {
	s := New(config.RedisConfig{Addr: "127.0.0.1:1"})
	defer s.Close()

	assert.Error(t, s.Ping(context.Background()))
	assert.Equal(t, "redis", s.Name())
}
