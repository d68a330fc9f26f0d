package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

var seedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestGenerateCatalog_Deterministic(t *testing.T) {
	opts := SeedOptions{Products: 4, ReviewsPerProduct: 6, Seed: 42, Now: seedNow}

	p1, r1 := GenerateCatalog(opts)
	p2, r2 := GenerateCatalog(opts)

	assert.Equal(t, p1, p2)
	assert.Equal(t, r1, r2)

	other, _ := GenerateCatalog(SeedOptions{Products: 4, ReviewsPerProduct: 6, Seed: 7, Now: seedNow})
	assert.NotEqual(t, p1, other)
}

func TestGenerateCatalog_Shape(t *testing.T) {
	products, reviews := GenerateCatalog(SeedOptions{Products: 3, ReviewsPerProduct: 20, FirstID: 100, Seed: 1, Now: seedNow})
	require.Len(t, products, 3)

	slugPattern := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	for i, p := range products {
		assert.Equal(t, int64(100+i), p.ID)
		assert.True(t, p.IsPublishedProduct())
		assert.Regexp(t, slugPattern, p.Slug)
		assert.NotEmpty(t, p.Price)

		list := reviews[p.ID]
		require.Len(t, list, 20)
		for _, r := range list {
			assert.Equal(t, p.ID, r.ProductID)
			assert.False(t, r.PublishedAt.After(seedNow))
		}

		want := p
		want.ApplyReviews(list)
		assert.Equal(t, want.ReviewCount, p.ReviewCount)
		assert.Equal(t, want.AverageRating, p.AverageRating)
		assert.Equal(t, want.RatingCounts, p.RatingCounts)
	}
}

func TestGenerateCatalog_Empty(t *testing.T) {
	products, reviews := GenerateCatalog(SeedOptions{Products: -1, Seed: 1, Now: seedNow})
	assert.Empty(t, products)
	assert.Empty(t, reviews)
}

type recordingWriter struct {
	products []int64
	reviews  int
	failOn   int64
}

func (w *recordingWriter) ReplaceProduct(_ context.Context, p *domain.Product, reviews []domain.Review) error {
	if p.ID == w.failOn {
		return errors.New("connection reset")
	}
	w.products = append(w.products, p.ID)
	w.reviews += len(reviews)
	return nil
}

func TestSeeder_Seed(t *testing.T) {
	w := &recordingWriter{}
	res, err := NewSeeder(w, newTestLogger()).Seed(context.Background(),
		SeedOptions{Products: 3, ReviewsPerProduct: 4, Seed: 9, Now: seedNow})

	require.NoError(t, err)
	assert.Equal(t, SeedResult{Products: 3, Reviews: 12}, res)
	assert.Equal(t, []int64{1, 2, 3}, w.products)
	assert.Equal(t, 12, w.reviews)
}

func TestSeeder_Seed_StopsOnError(t *testing.T) {
	w := &recordingWriter{failOn: 2}
	res, err := NewSeeder(w, newTestLogger()).Seed(context.Background(),
		SeedOptions{Products: 3, ReviewsPerProduct: 2, Seed: 9, Now: seedNow})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed product 2")
	assert.Equal(t, 1, res.Products)
	assert.Equal(t, []int64{1}, w.products)
}
