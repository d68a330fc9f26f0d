package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/pagination"
)

// ReviewReader is the read side of the review store used by the
// controllers and the embed.
type ReviewReader interface {
	TotalApprovedCount(ctx context.Context, productID int64) (int, error)
	FirstPage(ctx context.Context, productID int64, limit int) ([]domain.Review, error)
	Page(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error)
	ByRating(ctx context.Context, productID int64, rating int) ([]domain.Review, error)
	Product(ctx context.Context, productID int64) (*domain.Product, error)
	MaxWindow() int
}

// StoreConfig holds cache lifetimes and the query window bound.
type StoreConfig struct {
	CountTTL time.Duration `env:"COUNT_TTL" envDefault:"6h"`
	PageTTL  time.Duration `env:"PAGE_TTL" envDefault:"10m"`
	// MaxWindow caps limit and bounds the rating filter.
	MaxWindow int `env:"MAX_WINDOW" envDefault:"100"`
}

// DefaultStoreConfig returns the production lifetimes.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		CountTTL:  6 * time.Hour,
		PageTTL:   10 * time.Minute,
		MaxWindow: pagination.MaxLimit,
	}
}

// ReviewStore reads reviews and product aggregates through the cache.
// Cache failures are logged and the read falls through to the repository.
type ReviewStore struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	cache    repository.Cache
	cfg      StoreConfig
	logger   *slog.Logger
}

// NewReviewStore creates a store. cache may be nil.
func NewReviewStore(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	cache repository.Cache,
	cfg StoreConfig,
	logger *slog.Logger,
) *ReviewStore {
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = pagination.MaxLimit
	}
	return &ReviewStore{
		reviews:  reviews,
		products: products,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// MaxWindow is the largest page the store reads at once.
func (s *ReviewStore) MaxWindow() int {
	return s.cfg.MaxWindow
}

// Cache keys.
func countKey(productID int64) string {
	return fmt.Sprintf("sip_rswc_review_count_%d", productID)
}

func initialKey(productID int64, limit int) string {
	return fmt.Sprintf("initial_%d_%d", productID, limit)
}

func pageKey(productID int64, limit, offset int) string {
	return fmt.Sprintf("page_%d_%d_%d", productID, limit, offset)
}

func ratingKey(productID int64, rating int) string {
	return fmt.Sprintf("rating_%d_%d", productID, rating)
}

func productKey(productID int64) string {
	return fmt.Sprintf("product_%d", productID)
}

// TotalApprovedCount returns the number of visible reviews of a product.
func (s *ReviewStore) TotalApprovedCount(ctx context.Context, productID int64) (int, error) {
	if err := validateProduct(productID); err != nil {
		return 0, err
	}
	return cached(ctx, s, countKey(productID), s.cfg.CountTTL, func() (int, error) {
		n, err := s.reviews.CountApproved(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("count approved reviews: %w", err)
		}
		return n, nil
	})
}

// FirstPage returns the newest limit reviews.
func (s *ReviewStore) FirstPage(ctx context.Context, productID int64, limit int) ([]domain.Review, error) {
	limit, err := s.validateWindow(productID, limit, 0)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, initialKey(productID, limit), s.cfg.PageTTL, func() ([]domain.Review, error) {
		return s.list(ctx, repository.ReviewQuery{ProductID: productID, Limit: limit})
	})
}

// Page returns limit reviews starting at offset. Past the end it returns an
// empty slice.
func (s *ReviewStore) Page(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error) {
	limit, err := s.validateWindow(productID, limit, offset)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, pageKey(productID, limit, offset), s.cfg.PageTTL, func() ([]domain.Review, error) {
		return s.list(ctx, repository.ReviewQuery{ProductID: productID, Limit: limit, Offset: offset})
	})
}

// ByRating returns the newest reviews with exactly rating stars, bounded by
// the store window.
func (s *ReviewStore) ByRating(ctx context.Context, productID int64, rating int) ([]domain.Review, error) {
	if err := validateProduct(productID); err != nil {
		return nil, err
	}
	if !domain.ValidRating(rating) {
		return nil, apperrors.InvalidArgument("rating must be between 1 and 5")
	}
	return cached(ctx, s, ratingKey(productID, rating), s.cfg.PageTTL, func() ([]domain.Review, error) {
		return s.list(ctx, repository.ReviewQuery{ProductID: productID, Rating: rating, Limit: s.cfg.MaxWindow})
	})
}

// Product returns the product and its aggregates. A missing product is an
// error wrapping apperrors.ErrNotFound and is not cached.
func (s *ReviewStore) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	if err := validateProduct(productID); err != nil {
		return nil, err
	}
	p, err := cached(ctx, s, productKey(productID), s.cfg.PageTTL, func() (*domain.Product, error) {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", productID, apperrors.ErrNotFound)
	}
	return p, nil
}

// ReviewCount returns the precomputed review count, 0 for unknown products.
func (s *ReviewStore) ReviewCount(ctx context.Context, productID int64) (int, error) {
	p, err := s.productOrNil(ctx, productID)
	if err != nil || p == nil {
		return 0, err
	}
	return p.ReviewCount, nil
}

// AverageRating returns the precomputed average, 0 for unknown products.
func (s *ReviewStore) AverageRating(ctx context.Context, productID int64) (float64, error) {
	p, err := s.productOrNil(ctx, productID)
	if err != nil || p == nil {
		return 0, err
	}
	return p.AverageRating, nil
}

// RatingHistogram returns the per-star counts. It is never nil.
func (s *ReviewStore) RatingHistogram(ctx context.Context, productID int64) (domain.RatingHistogram, error) {
	p, err := s.productOrNil(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.RatingCounts == nil {
		return domain.RatingHistogram{}, nil
	}
	return p.RatingCounts, nil
}

// Price returns the stored price string, empty for unknown products.
func (s *ReviewStore) Price(ctx context.Context, productID int64) (string, error) {
	p, err := s.productOrNil(ctx, productID)
	if err != nil || p == nil {
		return "", err
	}
	return p.Price, nil
}

func (s *ReviewStore) productOrNil(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.Product(ctx, productID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *ReviewStore) list(ctx context.Context, q repository.ReviewQuery) ([]domain.Review, error) {
	reviews, err := s.reviews.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	s.logger.DebugContext(ctx, "reviews loaded",
		slog.Int64("product_id", q.ProductID),
		slog.Int("rating", q.Rating),
		slog.Int("limit", q.Limit),
		slog.Int("offset", q.Offset),
		slog.Int("count", len(reviews)),
	)
	return reviews, nil
}

func validateProduct(productID int64) error {
	if productID <= 0 {
		return apperrors.InvalidArgument("product_id must be a positive integer")
	}
	return nil
}

// validateWindow checks the window and returns limit capped to MaxWindow.
func (s *ReviewStore) validateWindow(productID int64, limit, offset int) (int, error) {
	if err := validateProduct(productID); err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, apperrors.InvalidArgument("limit must be a positive integer")
	}
	if offset < 0 {
		return 0, apperrors.InvalidArgument("offset must not be negative")
	}
	return min(limit, s.cfg.MaxWindow), nil
}

// cached returns the cached value of key or loads and stores it. Cache
// errors never fail the read.
func cached[T any](ctx context.Context, s *ReviewStore, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if s.cache != nil {
		var v T
		found, err := s.cache.Get(ctx, key, &v)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "review cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		case found:
			return v, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, v, ttl); err != nil {
			s.logger.WarnContext(ctx, "review cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}
	return v, nil
}
