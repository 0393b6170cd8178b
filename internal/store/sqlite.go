package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteGet = `SELECT data, revision FROM blobs WHERE key = ?`

	sqliteUpsert = `INSERT INTO blobs (key, data, revision) VALUES (?, ?, 1)
ON CONFLICT (key) DO UPDATE SET
    data = excluded.data,
    revision = blobs.revision + 1,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
RETURNING revision`

	sqliteInsert = `INSERT INTO blobs (key, data, revision) VALUES (?, ?, 1)
ON CONFLICT (key) DO NOTHING`

	sqliteUpdate = `UPDATE blobs SET
    data = ?,
    revision = revision + 1,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE key = ? AND revision = ?`
)

// SQLiteBlobStore stores blobs in a local SQLite file.
type SQLiteBlobStore struct {
	db *sql.DB
}

// NewSQLiteBlobStore opens (creating if needed) the database at dbPath
// and applies the embedded migrations.
func NewSQLiteBlobStore(dbPath string) (*SQLiteBlobStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("NewSQLiteBlobStore: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteBlobStore: open database: %w", err)
	}
	// one writer at a time; SQLite serialises writes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteBlobStore: ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteBlobStore: %w", err)
	}

	return &SQLiteBlobStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteBlobStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteBlobStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		data     []byte
		revision int64
	)
	err := s.db.QueryRowContext(ctx, sqliteGet, key).Scan(&data, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("SQLiteBlobStore.Get: query %q: %w", key, err)
	}
	return data, revision, nil
}

func (s *SQLiteBlobStore) Put(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	switch {
	case expected < 0:
		var revision int64
		if err := s.db.QueryRowContext(ctx, sqliteUpsert, key, data).Scan(&revision); err != nil {
			return 0, fmt.Errorf("SQLiteBlobStore.Put: upsert %q: %w", key, err)
		}
		return revision, nil

	case expected == NoRevision:
		res, err := s.db.ExecContext(ctx, sqliteInsert, key, data)
		if err != nil {
			return 0, fmt.Errorf("SQLiteBlobStore.Put: insert %q: %w", key, err)
		}
		if err := checkAffected(res); err != nil {
			return 0, err
		}
		return 1, nil

	default:
		res, err := s.db.ExecContext(ctx, sqliteUpdate, data, key, expected)
		if err != nil {
			return 0, fmt.Errorf("SQLiteBlobStore.Put: update %q: %w", key, err)
		}
		if err := checkAffected(res); err != nil {
			return 0, err
		}
		return expected + 1, nil
	}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
