package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const selectProduct = `
		SELECT id, name, slug, post_type, status, description, sku, price, image_url,
		       sale_ends_at, review_count, average_rating, rating_counts
		FROM products
		WHERE id = $1`

// GetByID retrieves a product with its review aggregates.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", selectProduct)
	defer func() { end(err) }()

	var (
		product   domain.Product
		histogram []byte
	)
	err = r.pool.QueryRow(ctx, selectProduct, id).Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.PostType,
		&product.Status,
		&product.Description,
		&product.SKU,
		&product.Price,
		&product.ImageURL,
		&product.SaleEndsAt,
		&product.ReviewCount,
		&product.AverageRating,
		&histogram,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	product.RatingCounts = domain.RatingHistogram{}
	if len(histogram) > 0 {
		if err = json.Unmarshal(histogram, &product.RatingCounts); err != nil {
			return nil, fmt.Errorf("decode rating counts of product %d: %w", id, err)
		}
	}

	return &product, nil
}
