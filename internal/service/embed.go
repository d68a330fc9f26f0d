package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
)

// EmbedRequest carries the shortcode attributes after coercion.
type EmbedRequest struct {
	ProductID int64
	Limit     int
	Schema    bool
}

// EmbedService renders the reviews shortcode: the rating summary, the first
// page of reviews and optionally the product schema.
type EmbedService struct {
	store      ReviewReader
	controller *PaginationController
	schema     *SchemaService
	renderer   *render.Renderer
	logger     *slog.Logger
}

// NewEmbedService creates an embed service.
func NewEmbedService(
	store ReviewReader,
	controller *PaginationController,
	schema *SchemaService,
	renderer *render.Renderer,
	logger *slog.Logger,
) *EmbedService {
	return &EmbedService{
		store:      store,
		controller: controller,
		schema:     schema,
		renderer:   renderer,
		logger:     logger,
	}
}

// Render returns the embed markup. A zero product id is a NotFound error
// carrying NoProductMessage; an id that is not a published product renders
// nothing.
func (s *EmbedService) Render(ctx context.Context, req EmbedRequest) (string, error) {
	if req.ProductID <= 0 {
		return "", apperrors.NotFound(NoProductMessage)
	}

	p, err := s.store.Product(ctx, req.ProductID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("render embed: %w", err)
	}
	if !p.IsPublishedProduct() {
		s.logger.DebugContext(ctx, "embed skipped for non product",
			slog.Int64("product_id", req.ProductID),
			slog.String("post_type", p.PostType),
			slog.String("status", p.Status),
		)
		return "", nil
	}

	initial, err := s.controller.Initial(ctx, req.ProductID, req.Limit)
	if err != nil {
		return "", fmt.Errorf("render embed: %w", err)
	}

	out := s.renderer.Embed(render.EmbedView{
		ProductID:     req.ProductID,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		Rows:          RatingBreakdown(p.ReviewCount, p.RatingCounts),
		ReviewsHTML:   initial.HTML,
	})

	script, err := s.schema.Script(ctx, req.ProductID, req.Schema)
	if err != nil {
		s.logger.WarnContext(ctx, "product schema failed",
			slog.Int64("product_id", req.ProductID),
			slog.String("error", err.Error()),
		)
		return out, nil
	}
	return out + script, nil
}
