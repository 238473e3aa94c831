package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	DefaultKey      = "perp-bridge-history"
	DefaultMaxItems = 50
)

type Option func(*store)

func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

func WithIDGenerator(newID func(now time.Time) string) Option {
	return func(s *store) { s.newID = newID }
}

// store keeps the whole history as one JSON array under a single key.
// Every read goes back to the backend.
type store struct {
	backend  kv.IStore
	key      string
	maxItems int
	logger   *logger.Logger

	// guards read-modify-write within this process
	mu    sync.Mutex
	now   func() time.Time
	newID func(now time.Time) string
}

func New(backend kv.IStore, key string, maxItems int, logger *logger.Logger, opts ...Option) IStore {
	if key == "" {
		key = DefaultKey
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	s := &store{
		backend:  backend,
		key:      key,
		maxItems: maxItems,
		logger:   logger,
		now:      time.Now,
		newID:    generateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateID returns tx_<unix ms>_<9 random chars>.
func generateID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("tx_%d_%s", now.UnixMilli(), suffix)
}

func (s *store) Add(ctx context.Context, tx model.BridgeTransaction) (*model.BridgeTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record := tx.Clone()
	record.ID = s.newID(now)
	record.Timestamp = now.UnixMilli()
	record.UpdatedAt = 0
	if record.Status == "" {
		record.Status = model.StatusPending
	}
	if record.TxHashes == nil {
		record.TxHashes = map[string]string{}
	}
	if record.CurrentStep == 0 {
		record.CurrentStep = 1
	}
	record.Error = nil

	list := s.load(ctx)
	list = append([]model.BridgeTransaction{record}, list...)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}

	out := record.Clone()
	return &out, nil
}

func (s *store) Update(ctx context.Context, id string, patch model.BridgeTransactionPatch) (*model.BridgeTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	for i := range list {
		if list[i].ID != id {
			continue
		}

		if patch.Status != nil && !list[i].Status.CanTransitionTo(*patch.Status) {
			return nil, errors.Wrapf(errs.ErrInvalidTransition, "%s -> %s", list[i].Status, *patch.Status)
		}

		list[i].Apply(patch)
		list[i].UpdatedAt = s.now().UnixMilli()
		if err := s.save(ctx, list); err != nil {
			return nil, err
		}

		out := list[i].Clone()
		return &out, nil
	}

	return nil, errors.Wrapf(errs.ErrNotFound, "transaction %s", id)
}

func (s *store) Get(ctx context.Context, id string) (*model.BridgeTransaction, error) {
	for _, tx := range s.load(ctx) {
		if tx.ID == id {
			out := tx.Clone()
			return &out, nil
		}
	}
	return nil, errors.Wrapf(errs.ErrNotFound, "transaction %s", id)
}

func (s *store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load(ctx)
	kept := make([]model.BridgeTransaction, 0, len(list))
	for _, tx := range list {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	if len(kept) == len(list) {
		return errors.Wrapf(errs.ErrNotFound, "transaction %s", id)
	}

	return s.save(ctx, kept)
}

func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.logger.Error("[history.Clear][Delete]", map[string]string{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (s *store) List(ctx context.Context) ([]model.BridgeTransaction, error) {
	return s.load(ctx), nil
}

func (s *store) ListPending(ctx context.Context) ([]model.BridgeTransaction, error) {
	var pending []model.BridgeTransaction
	for _, tx := range s.load(ctx) {
		if tx.Status.IsActive() {
			pending = append(pending, tx)
		}
	}
	return pending, nil
}

// load never fails: a missing, unreadable or corrupt blob is an empty history.
func (s *store) load(ctx context.Context) []model.BridgeTransaction {
	raw, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrKeyNotFound) {
			s.logger.Error("[history.load][Get]", map[string]string{
				"backend": s.backend.Name(),
				"error":   err.Error(),
			})
		}
		return []model.BridgeTransaction{}
	}

	list := []model.BridgeTransaction{}
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Error("[history.load][Unmarshal]", map[string]string{
			"backend": s.backend.Name(),
			"error":   err.Error(),
		})
		return []model.BridgeTransaction{}
	}
	if list == nil {
		return []model.BridgeTransaction{}
	}
	return list
}

func (s *store) save(ctx context.Context, list []model.BridgeTransaction) error {
	if len(list) > s.maxItems {
		list = list[:s.maxItems]
	}

	raw, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "failed to encode history")
	}

	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("[history.save][Set]", map[string]string{
			"backend": s.backend.Name(),
			"error":   err.Error(),
		})
		return errors.Wrap(err, "failed to persist history")
	}
	return nil
}
