package domain

import (
	"math"
	"time"
)

// Values a product row must carry to be reviewable on the storefront.
const (
	PostTypeProduct   = "product"
	PostStatusPublish = "publish"
)

// RatingHistogram maps a star value (1..5) to its approved review count.
type RatingHistogram map[int]int

// Count returns the number of reviews with star stars, 0 when absent.
func (h RatingHistogram) Count(star int) int {
	if h == nil {
		return 0
	}
	return h[star]
}

// Product is the catalog entry reviews belong to. ReviewCount,
// AverageRating and RatingCounts are aggregates kept up to date by the shop.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	PostType      string          `json:"post_type"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	Price         string          `json:"price"`
	ImageURL      string          `json:"image_url"`
	SaleEndsAt    *time.Time      `json:"sale_ends_at,omitempty"`
	ReviewCount   int             `json:"review_count"`
	AverageRating float64         `json:"average_rating"`
	RatingCounts  RatingHistogram `json:"rating_counts"`
}

// IsPublishedProduct reports whether p is a published product, the only
// kind the embed renders.
func (p *Product) IsPublishedProduct() bool {
	return p != nil && p.PostType == PostTypeProduct && p.Status == PostStatusPublish
}

// ApplyReviews recomputes the review aggregates from reviews. Only approved
// top-level reviews count; the average and histogram use the rated ones.
func (p *Product) ApplyReviews(reviews []Review) {
	p.ReviewCount = 0
	p.AverageRating = 0
	p.RatingCounts = RatingHistogram{}

	sum, rated := 0, 0
	for _, r := range reviews {
		if r.ProductID != p.ID || !r.IsTopLevel() || r.ApprovalStatus != ApprovalApproved {
			continue
		}
		p.ReviewCount++
		if !ValidRating(r.Rating) {
			continue
		}
		p.RatingCounts[r.Rating]++
		sum += r.Rating
		rated++
	}
	if rated > 0 {
		p.AverageRating = math.Round(float64(sum)/float64(rated)*100) / 100
	}
}
