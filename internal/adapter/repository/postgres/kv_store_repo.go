package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
)

// kvStoreRepository implements domain.KeyValueStore
type kvStoreRepository struct {
	db *DB
}

// NewKeyValueStore creates a new key-value repository
func NewKeyValueStore(db *DB) domain.KeyValueStore {
	return &kvStoreRepository{db: db}
}

// Get retrieves the value stored under key
func (r *kvStoreRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return []byte(value), nil
}

// Put inserts or replaces the value stored under key
func (r *kvStoreRepository) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

// Delete removes key
func (r *kvStoreRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}
