package store

import (
	"fmt"
	"strings"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/store/kv/memory"
	pgstore "github.com/dwarvesf/perp-bridge/internal/store/kv/postgres"
	"github.com/dwarvesf/perp-bridge/internal/store/kv/redis"
	"github.com/dwarvesf/perp-bridge/internal/store/kv/sqlite"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	BackendMemory   = "memory"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// NewBackend opens the key/value backend named by History.Backend.
func NewBackend(appConfig *config.AppConfig, logger *logger.Logger) (kv.IStore, error) {
	name := strings.ToLower(strings.TrimSpace(appConfig.History.Backend))

	var (
		backend kv.IStore
		err     error
	)
	switch name {
	case BackendMemory:
		backend = memory.New()
	case BackendSqlite, "":
		backend, err = sqlite.Open(appConfig.Sqlite.Path)
	case BackendPostgres:
		backend, err = pgstore.New(appConfig, logger)
	case BackendRedis:
		backend = redis.New(appConfig.Redis)
	default:
		return nil, fmt.Errorf("unknown history backend %q", appConfig.History.Backend)
	}
	if err != nil {
		logger.Error("[store.NewBackend]", map[string]string{
			"backend": name,
			"error":   err.Error(),
		})
		return nil, err
	}

	logger.Info("history backend ready", map[string]string{
		"backend": backend.Name(),
	})
	return backend, nil
}
