package redis

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
)

type store struct {
	pool *redis.Pool
}

func timeoutDialOptions(cfg config.RedisConfig) []redis.DialOption {
	return []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
		redis.DialPassword(cfg.Password),
		redis.DialDatabase(cfg.DB),
	}
}

func New(cfg config.RedisConfig) kv.IStore {
	return &store{
		pool: &redis.Pool{
			MaxIdle:     5,
			IdleTimeout: 240 * time.Second,
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", cfg.Addr, timeoutDialOptions(cfg)...)
			},
		},
	}
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	value, err := redis.Bytes(conn.Do("GET", key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, err
	}

	return value, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", key, value)
	return err
}

func (s *store) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("DEL", key)
	return err
}

func (s *store) Ping(ctx context.Context) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.String(conn.Do("PING"))
	return err
}

func (s *store) Name() string {
	return "redis"
}

func (s *store) Close() error {
	return s.pool.Close()
}
