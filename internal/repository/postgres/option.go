package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
)

// OptionRepository implements repository.OptionRepository using PostgreSQL.
type OptionRepository struct {
	pool database.DBTX
}

// NewOptionRepository creates a new PostgreSQL-backed option repository.
func NewOptionRepository(pool database.DBTX) *OptionRepository {
	return &OptionRepository{pool: pool}
}

// Get returns the JSON value stored under key.
func (r *OptionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM plugin_options WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("option %q: %w", key, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get option %q: %w", key, err)
	}
	return value, nil
}

// Put upserts the JSON value of key.
func (r *OptionRepository) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO plugin_options (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("put option %q: %w", key, err)
	}
	return nil
}
