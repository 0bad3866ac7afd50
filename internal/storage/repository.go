package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finclient/internal/cache"
	flog "finclient/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is a persistent key/value store on a local SQLite file.
// It holds the result cache envelopes and the saved session.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ cache.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements cache.Store
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.queries.GetEntry(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get entry %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements cache.Store
func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	if err := r.queries.UpsertEntry(ctx, key, value); err != nil {
		return fmt.Errorf("upsert entry %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Entry saved to SQLite", flog.FieldComponent, flog.ComponentStorage, flog.FieldCacheKey, key, "bytes", len(value))
	return nil
}

// Delete implements cache.Store
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if err := r.queries.DeleteEntry(ctx, key); err != nil {
		return fmt.Errorf("delete entry %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// how many were removed.
func (r *SQLiteRepository) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	n, err := r.queries.DeleteEntriesByPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete entries with prefix %s: %w", prefix, err)
	}
	slog.InfoContext(ctx, "Cache entries cleared", flog.FieldComponent, flog.ComponentStorage, "prefix", prefix, flog.FieldCount, n)
	return n, nil
}
