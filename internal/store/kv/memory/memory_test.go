package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	_, err := s.Get(ctx, "perp-bridge-history")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	value := []byte(`[{"id":"tx_1"}]`)
	require.NoError(t, s.Set(ctx, "perp-bridge-history", value))

	// callers must not be able to mutate stored bytes
	value[0] = 'X'
	got, err := s.Get(ctx, "perp-bridge-history")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"tx_1"}]`, string(got))

	require.NoError(t, s.Delete(ctx, "perp-bridge-history"))
	_, err = s.Get(ctx, "perp-bridge-history")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	assert.NoError(t, s.Ping(ctx))
	assert.Equal(t, "memory", s.Name())
}
