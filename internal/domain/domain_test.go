package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReview_StarCount(t *testing.T) {
	tests := []struct {
		rating int
		want   int
	}{
		{-2, 0},
		{0, 0},
		{3, 3},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Review{Rating: tt.rating}.StarCount(), "rating %d", tt.rating)
	}
}

func TestReview_Flags(t *testing.T) {
	assert.True(t, Review{}.IsTopLevel())
	assert.False(t, Review{ParentID: 3}.IsTopLevel())
	assert.False(t, Review{}.IsRated())
	assert.True(t, Review{Rating: 1}.IsRated())
}

func TestValidRating(t *testing.T) {
	for r := 1; r <= 5; r++ {
		assert.True(t, ValidRating(r))
	}
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}

func TestRatingHistogram_Count(t *testing.T) {
	var nilHist RatingHistogram
	assert.Equal(t, 0, nilHist.Count(5))
	assert.Equal(t, 4, RatingHistogram{5: 4}.Count(5))
	assert.Equal(t, 0, RatingHistogram{5: 4}.Count(1))
}

func TestProduct_IsPublishedProduct(t *testing.T) {
	var nilProduct *Product
	assert.False(t, nilProduct.IsPublishedProduct())
	assert.True(t, (&Product{PostType: "product", Status: "publish"}).IsPublishedProduct())
	assert.False(t, (&Product{PostType: "page", Status: "publish"}).IsPublishedProduct())
	assert.False(t, (&Product{PostType: "product", Status: "draft"}).IsPublishedProduct())
}

func TestColorTheme_Sanitize(t *testing.T) {
	valid := func(s string) bool { return strings.HasPrefix(s, "#") && (len(s) == 4 || len(s) == 7) }

	got := ColorTheme{StarColor: "#000", BarColor: "red", ReviewTitle: "#123456"}.Sanitize(valid)
	def := DefaultColorTheme()

	assert.Equal(t, "#000", got.StarColor)
	assert.Equal(t, def.BarColor, got.BarColor)
	assert.Equal(t, "#123456", got.ReviewTitle)
	assert.Equal(t, def.ReviewBackground, got.ReviewBackground)
	assert.Equal(t, def.LoadMoreButtonLabel, got.LoadMoreButtonLabel)
}

func TestColorTheme_Merge(t *testing.T) {
	base := DefaultColorTheme()
	got := base.Merge(ColorTheme{BarColor: "#000000"})

	assert.Equal(t, "#000000", got.BarColor)
	assert.Equal(t, base.StarColor, got.StarColor)
}

func TestProduct_ApplyReviews(t *testing.T) {
	p := &Product{ID: 7, ReviewCount: 99}
	p.ApplyReviews([]Review{
		{ProductID: 7, Rating: 5, ApprovalStatus: ApprovalApproved},
		{ProductID: 7, Rating: 4, ApprovalStatus: ApprovalApproved},
		{ProductID: 7, Rating: 4, ApprovalStatus: ApprovalApproved},
		{ProductID: 7, Rating: 0, ApprovalStatus: ApprovalApproved},
		{ProductID: 7, Rating: 1, ApprovalStatus: ApprovalPending},
		{ProductID: 7, Rating: 1, ApprovalStatus: ApprovalApproved, ParentID: 3},
		{ProductID: 8, Rating: 1, ApprovalStatus: ApprovalApproved},
	})

	assert.Equal(t, 4, p.ReviewCount)
	assert.Equal(t, 4.33, p.AverageRating)
	assert.Equal(t, RatingHistogram{5: 1, 4: 2}, p.RatingCounts)
}

func TestProduct_ApplyReviews_None(t *testing.T) {
	p := &Product{ID: 7}
	p.ApplyReviews(nil)

	assert.Zero(t, p.ReviewCount)
	assert.Zero(t, p.AverageRating)
	assert.NotNil(t, p.RatingCounts)
}
