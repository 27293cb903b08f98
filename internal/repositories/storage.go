package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hmx/internal/shared"
)

// Storage is a durable string key/value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SQLStorage implements [Storage] on the migrated storage table.
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage creates a new [SQLStorage] with the given database connection
func NewSQLStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// Get returns the value stored under key
func (s *SQLStorage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query storage: %w", err)
	}
	return value, nil
}

// Put inserts or replaces the value under key
func (s *SQLStorage) Put(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

// Delete removes key; deleting an absent key reports [shared.ErrNotFound]
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM storage WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete from storage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	return nil
}

// Keys lists stored keys with their last update time, oldest first
func (s *SQLStorage) Keys(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, updated_at FROM storage ORDER BY updated_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query storage: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]time.Time)
	for rows.Next() {
		var (
			key       string
			updatedAt time.Time
		)
		if err := rows.Scan(&key, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan storage row: %w", err)
		}
		keys[key] = updatedAt
	}
	return keys, rows.Err()
}
