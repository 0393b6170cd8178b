package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgSchema = `CREATE TABLE IF NOT EXISTS blobs (
    key        TEXT PRIMARY KEY,
    data       BYTEA NOT NULL,
    revision   BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	pgGet = `SELECT data, revision FROM blobs WHERE key = $1`

	pgUpsert = `INSERT INTO blobs (key, data, revision) VALUES ($1, $2, 1)
ON CONFLICT (key) DO UPDATE SET
    data = EXCLUDED.data,
    revision = blobs.revision + 1,
    updated_at = now()
RETURNING revision`

	pgInsert = `INSERT INTO blobs (key, data, revision) VALUES ($1, $2, 1)
ON CONFLICT (key) DO NOTHING`

	pgUpdate = `UPDATE blobs SET data = $1, revision = revision + 1, updated_at = now()
WHERE key = $2 AND revision = $3`
)

// PostgresBlobStore stores blobs in a Postgres table.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStore connects to databaseURL, verifies the connection
// and creates the blobs table when missing.
func NewPostgresBlobStore(ctx context.Context, databaseURL string) (*PostgresBlobStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresBlobStore: parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresBlobStore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("NewPostgresBlobStore: ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("NewPostgresBlobStore: create schema: %w", err)
	}

	return &PostgresBlobStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresBlobStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		data     []byte
		revision int64
	)
	err := s.pool.QueryRow(ctx, pgGet, key).Scan(&data, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("PostgresBlobStore.Get: query %q: %w", key, err)
	}
	return data, revision, nil
}

func (s *PostgresBlobStore) Put(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	switch {
	case expected < 0:
		var revision int64
		if err := s.pool.QueryRow(ctx, pgUpsert, key, data).Scan(&revision); err != nil {
			return 0, fmt.Errorf("PostgresBlobStore.Put: upsert %q: %w", key, err)
		}
		return revision, nil

	case expected == NoRevision:
		tag, err := s.pool.Exec(ctx, pgInsert, key, data)
		if err != nil {
			return 0, fmt.Errorf("PostgresBlobStore.Put: insert %q: %w", key, err)
		}
		if tag.RowsAffected() == 0 {
			return 0, ErrConflict
		}
		return 1, nil

	default:
		tag, err := s.pool.Exec(ctx, pgUpdate, data, key, expected)
		if err != nil {
			return 0, fmt.Errorf("PostgresBlobStore.Put: update %q: %w", key, err)
		}
		if tag.RowsAffected() == 0 {
			return 0, ErrConflict
		}
		return expected + 1, nil
	}
}
