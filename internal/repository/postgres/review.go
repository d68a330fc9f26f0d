package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// visible is the predicate every displayed review satisfies. The optional
// rating is folded into the same map so placeholder order stays stable.
func visible(productID int64, rating int) sq.Eq {
	eq := sq.Eq{
		"p.post_type":       domain.PostTypeProduct,
		"p.status":          domain.PostStatusPublish,
		"r.approval_status": string(domain.ApprovalApproved),
		"r.parent_id":       0,
		"r.product_id":      productID,
	}
	if rating > 0 {
		eq["r.rating"] = rating
	}
	return eq
}

// CountApproved returns the number of visible reviews of a product.
func (r *ReviewRepository) CountApproved(ctx context.Context, productID int64) (count int, err error) {
	query, args, err := psql.Select("COUNT(*)").
		From("product_reviews r").
		Join("products p ON p.id = r.product_id").
		Where(visible(productID, 0)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "CountApprovedReviews", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// List returns one window of visible reviews ordered newest first, with the
// id as tie-breaker so consecutive windows never overlap.
func (r *ReviewRepository) List(ctx context.Context, q repository.ReviewQuery) (reviews []domain.Review, err error) {
	builder := psql.Select(
		"r.id", "r.product_id", "r.parent_id", "r.author_name", "r.body",
		"r.rating", "r.published_at", "r.approval_status",
	).
		From("product_reviews r").
		Join("products p ON p.id = r.product_id").
		Where(visible(q.ProductID, q.Rating)).
		OrderBy("r.published_at DESC", "r.id DESC").
		Limit(uint64(q.Limit))
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review query: %w", err)
	}

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews = make([]domain.Review, 0, q.Limit)
	for rows.Next() {
		var (
			rv     domain.Review
			status string
		)
		if err = rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.ParentID,
			&rv.AuthorName,
			&rv.Body,
			&rv.Rating,
			&rv.PublishedAt,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rv.ApprovalStatus = domain.ApprovalStatus(status)
		reviews = append(reviews, rv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
