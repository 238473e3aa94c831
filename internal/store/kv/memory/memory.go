package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
)

type store struct {
	c *cache.Cache
}

// New returns a process-local store. Values never expire.
func New() kv.IStore {
	return &store{
		c: cache.New(cache.NoExpiration, 0),
	}
}

func (s *store) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, kv.ErrKeyNotFound
	}

	b := v.([]byte)
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *store) Set(_ context.Context, key string, value []byte) error {
	b := make([]byte, len(value))
	copy(b, value)
	s.c.Set(key, b, cache.NoExpiration)
	return nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *store) Ping(_ context.Context) error {
	return nil
}

func (s *store) Name() string {
	return "memory"
}

func (s *store) Close() error {
	s.c.Flush()
	return nil
}
