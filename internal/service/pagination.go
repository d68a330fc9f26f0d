package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/pagination"
)

// NoProductMessage is the visitor-facing text when no product is selected.
const NoProductMessage = "No product found for reviews."

// LoadMoreRequest asks for the page after the ones already shown.
type LoadMoreRequest struct {
	ProductID int64 `form:"product_id"`
	Offset    int   `form:"offset"`
	Limit     int   `form:"limit"`
}

// PaginationController drives the initial render, load-more and
// filter-by-rating flows over the review store and renderer.
type PaginationController struct {
	store    ReviewReader
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewPaginationController creates a controller.
func NewPaginationController(store ReviewReader, renderer *render.Renderer, logger *slog.Logger) *PaginationController {
	return &PaginationController{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// Initial renders the first limit reviews with a load-more control when
// more remain. A non-positive limit means the default page size.
func (c *PaginationController) Initial(ctx context.Context, productID int64, limit int) (*domain.InitialView, error) {
	w := pagination.Window{Limit: limit}.Normalize(c.store.MaxWindow())

	total, err := c.store.TotalApprovedCount(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("initial reviews: %w", err)
	}
	page, err := c.store.FirstPage(ctx, productID, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("initial reviews: %w", err)
	}

	state := domain.StateInitial
	if total <= w.Limit {
		state = domain.StateExhausted
	}

	return &domain.InitialView{
		HTML:  c.renderer.Render(page, productID, false, w.Limit, total),
		Total: total,
		Limit: w.Limit,
		State: state,
	}, nil
}

// LoadMore renders the items of the requested window and the state of the
// load-more control.
func (c *PaginationController) LoadMore(ctx context.Context, req LoadMoreRequest) (*domain.LoadMoreResult, error) {
	if req.ProductID <= 0 {
		return nil, apperrors.NotFound(NoProductMessage)
	}
	w := pagination.Window{Offset: req.Offset, Limit: req.Limit}.Normalize(c.store.MaxWindow())

	total, err := c.store.TotalApprovedCount(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load more reviews: %w", err)
	}
	page, err := c.store.Page(ctx, req.ProductID, w.Limit, w.Offset)
	if err != nil {
		return nil, fmt.Errorf("load more reviews: %w", err)
	}

	remaining := Remaining(total, w.Limit, w.Offset)
	isLast := w.Offset == total-1
	exhausted := isLast || remaining <= 0 || len(page) == 0 || len(page) < w.Limit

	state := domain.StatePaginating
	if exhausted {
		state = domain.StateExhausted
	}

	c.logger.InfoContext(ctx, "reviews page served",
		slog.Int64("product_id", req.ProductID),
		slog.Int("offset", w.Offset),
		slog.Int("limit", w.Limit),
		slog.Int("total", total),
		slog.Int("remaining", remaining),
	)

	return &domain.LoadMoreResult{
		HTML:           c.renderer.Render(page, req.ProductID, true, w.Limit, total),
		IsLastPage:     isLast,
		ButtonText:     c.renderer.LoadMoreLabel(remaining, req.ProductID),
		RemainingCount: remaining,
		Exhausted:      exhausted,
		NextOffset:     w.Offset + w.Limit,
		State:          state,
	}, nil
}

// Remaining is the count shown on the load-more control after the window
// (offset, limit) has been served. A result equal to offset reads as 0, and
// the value is never negative.
func Remaining(total, limit, offset int) int {
	remaining := total - limit - offset
	if remaining == offset {
		remaining = 0
	}
	return max(remaining, 0)
}

// FilterByRating renders every review with exactly rating stars, up to the
// store window. Filtered lists are not paginated.
func (c *PaginationController) FilterByRating(ctx context.Context, productID int64, rating int) (*domain.FilterResult, error) {
	reviews, err := c.store.ByRating(ctx, productID, rating)
	if err != nil {
		return nil, fmt.Errorf("filter reviews: %w", err)
	}

	c.logger.InfoContext(ctx, "reviews filtered",
		slog.Int64("product_id", productID),
		slog.Int("rating", rating),
		slog.Int("matches", len(reviews)),
	)

	return &domain.FilterResult{
		HTML:       c.renderer.Render(reviews, productID, true, 0, 0),
		MatchCount: len(reviews),
		State:      domain.StateFiltered,
	}, nil
}
