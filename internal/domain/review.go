package domain

import (
	"time"
)

// ApprovalStatus is the moderation state of a review.
type ApprovalStatus string

// Review approval states. Only approved reviews are ever displayed.
const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalSpam     ApprovalStatus = "spam"
	ApprovalTrash    ApprovalStatus = "trash"
)

// MaxStars is the top of the rating scale.
const MaxStars = 5

// Review is a customer review of a product.
type Review struct {
	ID             int64          `json:"id"`
	ProductID      int64          `json:"product_id"`
	ParentID       int64          `json:"parent_id"`
	AuthorName     string         `json:"author_name"`
	Body           string         `json:"body"`
	Rating         int            `json:"rating"`
	PublishedAt    time.Time      `json:"published_at"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
}

// IsTopLevel reports whether the review is not a reply to another review.
func (r Review) IsTopLevel() bool {
	return r.ParentID == 0
}

// StarCount is the number of filled stars to draw: the rating clamped to 0..5.
func (r Review) StarCount() int {
	return min(max(r.Rating, 0), MaxStars)
}

// IsRated reports whether the reviewer left a star rating. 0 means unrated.
func (r Review) IsRated() bool {
	return r.Rating != 0
}

// ValidRating reports whether rating is a selectable star value (1..5).
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= MaxStars
}

// ReviewPage is one window of a product's reviews.
type ReviewPage struct {
	Items  []Review `json:"items"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Total  int      `json:"total"`
}
