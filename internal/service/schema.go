package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
)

// SchemaConfig holds the store settings published in the product schema.
type SchemaConfig struct {
	BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Currency string `env:"CURRENCY" envDefault:"USD"`
	Country  string `env:"COUNTRY" envDefault:"US"`
}

// SchemaService builds the JSON-LD product schema.
type SchemaService struct {
	store  ReviewReader
	cfg    SchemaConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewSchemaService creates a schema service using the wall clock.
func NewSchemaService(store ReviewReader, cfg SchemaConfig, logger *slog.Logger) *SchemaService {
	if cfg.Country == "" {
		cfg.Country = "US"
	}
	return &SchemaService{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock replaces the clock used for priceValidUntil.
func (s *SchemaService) SetClock(now func() time.Time) {
	s.now = now
}

// Build returns the schema of a published product, or nil when the product
// does not exist or is not published.
func (s *SchemaService) Build(ctx context.Context, productID int64) (*render.ProductSchema, error) {
	p, err := s.store.Product(ctx, productID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	if !p.IsPublishedProduct() {
		return nil, nil
	}

	reviews, err := s.store.FirstPage(ctx, productID, render.MaxSchemaReviews)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	schema := render.BuildProductSchema(p, reviews, render.SchemaOptions{
		BaseURL:  s.cfg.BaseURL,
		Currency: s.cfg.Currency,
		Country:  s.cfg.Country,
		Now:      s.now(),
	})
	return &schema, nil
}

// Script returns the schema script for productID, or "" when disabled or
// when there is nothing to describe.
func (s *SchemaService) Script(ctx context.Context, productID int64, enabled bool) (string, error) {
	if !enabled {
		return "", nil
	}
	schema, err := s.Build(ctx, productID)
	if err != nil || schema == nil {
		return "", err
	}
	return schema.Script()
}
