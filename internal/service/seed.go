package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/slug"
)

// CatalogWriter persists a product together with its full review set.
type CatalogWriter interface {
	ReplaceProduct(ctx context.Context, p *domain.Product, reviews []domain.Review) error
}

// SeedOptions control the generated demo catalog.
type SeedOptions struct {
	Products          int
	ReviewsPerProduct int
	// FirstID is the ID of the first product. Defaults to 1.
	FirstID int64
	// Seed makes the generated data reproducible.
	Seed uint64
	// Now anchors review dates. Defaults to the wall clock.
	Now time.Time
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Products int
	Reviews  int
}

var (
	seedAdjectives = []string{"Classic", "Organic", "Crème", "Handmade", "Vintage", "Everyday", "Güneş", "Slim"}
	seedNouns      = []string{"Mug", "Linen Shirt", "Tote Bag", "Notebook", "Candle", "Scarf", "Teapot", "Wallet"}
	seedAuthors    = []string{"Ann", "Bob", "Chloé", "Deniz", "Emma", "Farid", "Grace", "Hiro", "Inès", "Jon"}
	seedBodies     = []string{
		"Exactly as described.",
		"Good value for the price.\nWould buy again.",
		"Arrived quickly and well packed.",
		"The colour is a bit off, otherwise fine.",
		"Not what I expected.",
		"Love it!",
	}
	// Skewed towards good ratings, like most shops.
	seedRatings = []int{5, 5, 5, 4, 4, 4, 3, 2, 1, 0}
)

// GenerateCatalog builds a demo catalog. The same options always produce
// the same products and reviews. Every product's aggregates match its
// reviews.
func GenerateCatalog(opts SeedOptions) ([]domain.Product, map[int64][]domain.Review) {
	if opts.FirstID <= 0 {
		opts.FirstID = 1
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	products := make([]domain.Product, 0, max(opts.Products, 0))
	reviews := make(map[int64][]domain.Review, max(opts.Products, 0))
	for i := range max(opts.Products, 0) {
		id := opts.FirstID + int64(i)
		name := fmt.Sprintf("%s %s %d",
			seedAdjectives[rng.IntN(len(seedAdjectives))], seedNouns[rng.IntN(len(seedNouns))], id)
		p := domain.Product{
			ID:       id,
			Name:     name,
			Slug:     slug.Generate(name),
			PostType: domain.PostTypeProduct,
			Status:   domain.PostStatusPublish,
			SKU:      fmt.Sprintf("SIP-%05d", id),
			Price:    fmt.Sprintf("%d.%02d", 5+rng.IntN(95), rng.IntN(100)),
		}

		list := make([]domain.Review, 0, max(opts.ReviewsPerProduct, 0))
		for range max(opts.ReviewsPerProduct, 0) {
			status := domain.ApprovalApproved
			if rng.IntN(10) == 0 {
				status = domain.ApprovalPending
			}
			list = append(list, domain.Review{
				ProductID:      id,
				AuthorName:     seedAuthors[rng.IntN(len(seedAuthors))],
				Body:           seedBodies[rng.IntN(len(seedBodies))],
				Rating:         seedRatings[rng.IntN(len(seedRatings))],
				PublishedAt:    opts.Now.Add(-time.Duration(rng.IntN(365*24)) * time.Hour).Truncate(time.Second),
				ApprovalStatus: status,
			})
		}
		p.ApplyReviews(list)

		products = append(products, p)
		reviews[id] = list
	}
	return products, reviews
}

// Seeder writes a generated demo catalog.
type Seeder struct {
	writer CatalogWriter
	logger *slog.Logger
}

// NewSeeder creates a seeder backed by writer.
func NewSeeder(writer CatalogWriter, logger *slog.Logger) *Seeder {
	return &Seeder{writer: writer, logger: logger}
}

// Seed generates a catalog from opts and writes it product by product. It
// stops at the first failed product.
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	products, reviews := GenerateCatalog(opts)
	for i := range products {
		p := &products[i]
		if err := s.writer.ReplaceProduct(ctx, p, reviews[p.ID]); err != nil {
			return res, fmt.Errorf("seed product %d: %w", p.ID, err)
		}
		res.Products++
		res.Reviews += len(reviews[p.ID])
		s.logger.Debug("seeded product",
			slog.Int64("product_id", p.ID),
			slog.String("slug", p.Slug),
			slog.Int("reviews", p.ReviewCount),
		)
	}
	s.logger.Info("demo catalog seeded",
		slog.Int("products", res.Products),
		slog.Int("reviews", res.Reviews),
	)
	return res, nil
}
