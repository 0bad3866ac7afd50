package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const getEntry = `SELECT value FROM kv_entries WHERE key = ?`

func (q *Queries) GetEntry(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getEntry, key).Scan(&value)
	return value, err
}

const upsertEntry = `INSERT INTO kv_entries (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (q *Queries) UpsertEntry(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertEntry, key, value)
	return err
}

const deleteEntry = `DELETE FROM kv_entries WHERE key = ?`

func (q *Queries) DeleteEntry(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteEntry, key)
	return err
}

const deleteEntriesByPrefix = `DELETE FROM kv_entries WHERE substr(key, 1, length(?)) = ?`

func (q *Queries) DeleteEntriesByPrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEntriesByPrefix, prefix, prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
