package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
)

// CatalogWriter loads products and their reviews. The service itself never
// writes reviews; this backs the seed command.
type CatalogWriter struct {
	db database.TxBeginner
}

// NewCatalogWriter creates a new PostgreSQL-backed catalog writer.
func NewCatalogWriter(db database.TxBeginner) *CatalogWriter {
	return &CatalogWriter{db: db}
}

const upsertProduct = `
		INSERT INTO products (id, name, slug, post_type, status, description, sku, price, image_url,
		                      sale_ends_at, review_count, average_rating, rating_counts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			post_type = EXCLUDED.post_type,
			status = EXCLUDED.status,
			description = EXCLUDED.description,
			sku = EXCLUDED.sku,
			price = EXCLUDED.price,
			image_url = EXCLUDED.image_url,
			sale_ends_at = EXCLUDED.sale_ends_at,
			review_count = EXCLUDED.review_count,
			average_rating = EXCLUDED.average_rating,
			rating_counts = EXCLUDED.rating_counts`

const insertReview = `
		INSERT INTO product_reviews (product_id, parent_id, author_name, body, rating, published_at, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

// ReplaceProduct upserts p and replaces all of its reviews in one transaction.
func (w *CatalogWriter) ReplaceProduct(ctx context.Context, p *domain.Product, reviews []domain.Review) (err error) {
	histogram, err := json.Marshal(p.RatingCounts)
	if err != nil {
		return fmt.Errorf("encode rating counts: %w", err)
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, upsertProduct,
		p.ID, p.Name, p.Slug, p.PostType, p.Status, p.Description, p.SKU, p.Price, p.ImageURL,
		p.SaleEndsAt, p.ReviewCount, p.AverageRating, histogram,
	); err != nil {
		return fmt.Errorf("upsert product %d: %w", p.ID, err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM product_reviews WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete reviews of product %d: %w", p.ID, err)
	}

	if err = insertReviews(ctx, tx, p.ID, reviews); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit product %d: %w", p.ID, err)
	}
	return nil
}

func insertReviews(ctx context.Context, tx pgx.Tx, productID int64, reviews []domain.Review) error {
	for _, r := range reviews {
		if _, err := tx.Exec(ctx, insertReview,
			productID, r.ParentID, r.AuthorName, r.Body, r.Rating, r.PublishedAt, string(r.ApprovalStatus),
		); err != nil {
			return fmt.Errorf("insert review of product %d: %w", productID, err)
		}
	}
	return nil
}
