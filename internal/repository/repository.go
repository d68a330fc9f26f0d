package repository

import (
	"context"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

// ReviewQuery selects a window of a product's visible reviews: approved,
// top-level and attached to a published product, newest first.
type ReviewQuery struct {
	ProductID int64
	// Rating restricts the result to one star value; 0 means any.
	Rating int
	Limit  int
	Offset int
}

// ReviewRepository reads reviews.
type ReviewRepository interface {
	// CountApproved returns the number of visible reviews of a product.
	CountApproved(ctx context.Context, productID int64) (int, error)

	// List returns the reviews selected by q in display order.
	List(ctx context.Context, q ReviewQuery) ([]domain.Review, error)
}

// ProductRepository reads products and their review aggregates.
type ProductRepository interface {
	// GetByID returns the product or an error wrapping apperrors.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// OptionRepository stores plugin settings as JSON documents.
type OptionRepository interface {
	// Get returns the raw JSON value or an error wrapping apperrors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value of key.
	Put(ctx context.Context, key string, value []byte) error
}

// Cache is a best-effort key/value store for JSON-encodable values.
type Cache interface {
	// Get decodes the cached value of key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
