package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
)

const kvTable = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

type store struct {
	db        *sql.DB
	stmtCache *stmtCache
}

// Open opens (or creates) the sqlite file at path and ensures the kv table.
func Open(path string) (kv.IStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite")
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	return New(db)
}

func New(db *sql.DB) (kv.IStore, error) {
	if _, err := db.Exec(kvTable); err != nil {
		return nil, errors.Wrap(err, "failed to create kv table")
	}

	return &store{
		db:        db,
		stmtCache: newStmtCache(db),
	}, nil
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	stmt, err := s.stmtCache.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return nil, err
	}

	var value []byte
	if err := stmt.QueryRowContext(ctx, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, err
	}

	return value, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte) error {
	stmt, err := s.stmtCache.Prepare(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, key, value)
	return err
}

func (s *store) Delete(ctx context.Context, key string) error {
	stmt, err := s.stmtCache.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, key)
	return err
}

func (s *store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *store) Name() string {
	return "sqlite"
}

func (s *store) Close() error {
	s.stmtCache.Clear()
	return s.db.Close()
}
