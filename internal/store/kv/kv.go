// Package kv defines the key/value backends that hold the bridge history blob.
package kv

import (
	"context"

	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.New("key not found")

// IStore stores opaque values under string keys.
// Get returns ErrKeyNotFound when the key is absent.
type IStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Name() string
	Close() error
}
