package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ukccu/internal/adapters/storage"
)

// SQLStore persists namespaced values in the kv table.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
	now     func() time.Time
}

// NewSQLStore creates a Store backed by a migrated database.
// PRE: db has the kv table (see storage.Migrate)
// POST: Returns a ready-to-use store
func NewSQLStore(db storage.SQLDB, dialect storage.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT value FROM kv WHERE namespace = ? AND key = ?`),
		namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, namespace, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		namespace, key, value, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Scan implements Store.
func (s *SQLStore) Scan(ctx context.Context, key string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.Rebind(`SELECT namespace, value FROM kv WHERE key = ? ORDER BY namespace`),
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("kv scan %s: %w", key, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Namespace, &e.Value); err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", key, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
