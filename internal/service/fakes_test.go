package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var baseTime = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

// --- In-memory catalog ---

type memoryCatalog struct {
	mu         sync.Mutex
	products   map[int64]*domain.Product
	reviews    []domain.Review
	countCalls int
	listCalls  int
	lastQuery  repository.ReviewQuery
	err        error
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{products: make(map[int64]*domain.Product)}
}

func (m *memoryCatalog) addProduct(p domain.Product) {
	if p.PostType == "" {
		p.PostType = domain.PostTypeProduct
	}
	if p.Status == "" {
		p.Status = domain.PostStatusPublish
	}
	m.products[p.ID] = &p
}

// addReviews adds n approved top-level reviews to productID, one hour apart,
// newest last. Ratings cycle through ratings.
func (m *memoryCatalog) addReviews(productID int64, n int, ratings ...int) {
	if len(ratings) == 0 {
		ratings = []int{5}
	}
	start := int64(len(m.reviews)) + 1
	for i := 0; i < n; i++ {
		m.reviews = append(m.reviews, domain.Review{
			ID:             start + int64(i),
			ProductID:      productID,
			AuthorName:     fmt.Sprintf("Reviewer %d", start+int64(i)),
			Body:           "Solid product",
			Rating:         ratings[i%len(ratings)],
			PublishedAt:    baseTime.Add(time.Duration(i) * time.Hour),
			ApprovalStatus: domain.ApprovalApproved,
		})
	}
}

func (m *memoryCatalog) visible(productID int64, rating int) []domain.Review {
	p, ok := m.products[productID]
	if !ok || !p.IsPublishedProduct() {
		return nil
	}
	var out []domain.Review
	for _, r := range m.reviews {
		if r.ProductID != productID || !r.IsTopLevel() || r.ApprovalStatus != domain.ApprovalApproved {
			continue
		}
		if rating > 0 && r.Rating != rating {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memoryCatalog) CountApproved(_ context.Context, productID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return len(m.visible(productID, 0)), nil
}

func (m *memoryCatalog) List(_ context.Context, q repository.ReviewQuery) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	all := m.visible(q.ProductID, q.Rating)
	if q.Offset >= len(all) {
		return nil, nil
	}
	end := min(q.Offset+q.Limit, len(all))
	return append([]domain.Review(nil), all[q.Offset:end]...), nil
}

func (m *memoryCatalog) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, apperrors.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// --- Map cache ---

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		delete(c.ttls, k)
	}
	return nil
}

type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string, any) (bool, error) {
	return false, errCacheDown
}

func (brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errCacheDown
}

func (brokenCache) Delete(context.Context, ...string) error {
	return errCacheDown
}

// --- Option store ---

type memoryOptions struct {
	values map[string][]byte
	err    error
}

func newMemoryOptions() *memoryOptions {
	return &memoryOptions{values: make(map[string][]byte)}
}

func (o *memoryOptions) Get(_ context.Context, key string) ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	v, ok := o.values[key]
	if !ok {
		return nil, fmt.Errorf("option %s: %w", key, apperrors.ErrNotFound)
	}
	return v, nil
}

func (o *memoryOptions) Put(_ context.Context, key string, value []byte) error {
	if o.err != nil {
		return o.err
	}
	o.values[key] = value
	return nil
}

func newTestStore(catalog *memoryCatalog, cache repository.Cache) *ReviewStore {
	return NewReviewStore(catalog, catalog, cache, DefaultStoreConfig(), newTestLogger())
}
