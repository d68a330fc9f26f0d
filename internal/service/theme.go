package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/validator"
)

// LoadThemeFile reads a YAML color theme. Missing keys keep their defaults.
func LoadThemeFile(path string) (domain.ColorTheme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ColorTheme{}, fmt.Errorf("read theme file: %w", err)
	}
	var seed domain.ColorTheme
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return domain.ColorTheme{}, fmt.Errorf("parse theme file %s: %w", path, err)
	}
	if err := validator.Validate(seed); err != nil {
		return domain.ColorTheme{}, fmt.Errorf("theme file %s: %w", path, err)
	}
	return domain.DefaultColorTheme().Merge(seed), nil
}

// ThemeService reads and updates the color settings.
type ThemeService struct {
	options repository.OptionRepository
	// fallback is used until colors are saved.
	fallback domain.ColorTheme
	logger   *slog.Logger
}

// NewThemeService creates a theme service. A nil seed means the shipped
// defaults.
func NewThemeService(options repository.OptionRepository, seed *domain.ColorTheme, logger *slog.Logger) *ThemeService {
	fallback := domain.DefaultColorTheme()
	if seed != nil {
		fallback = fallback.Merge(*seed).Sanitize(validator.IsHexColor)
	}
	return &ThemeService{
		options:  options,
		fallback: fallback,
		logger:   logger,
	}
}

// Colors returns the sanitized color theme.
func (s *ThemeService) Colors(ctx context.Context) (domain.ColorTheme, error) {
	raw, err := s.options.Get(ctx, domain.ColorsOptionKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return s.fallback, nil
	}
	if err != nil {
		return domain.ColorTheme{}, fmt.Errorf("get colors: %w", err)
	}

	var stored domain.ColorTheme
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.logger.WarnContext(ctx, "stored colors unreadable, using defaults",
			slog.String("error", err.Error()),
		)
		return s.fallback, nil
	}
	return stored.Sanitize(validator.IsHexColor), nil
}

// UpdateColors replaces the saved theme. Each missing or invalid color is
// stored as its default.
func (s *ThemeService) UpdateColors(ctx context.Context, input domain.ColorTheme) (domain.ColorTheme, error) {
	clean := input.Sanitize(validator.IsHexColor)

	raw, err := json.Marshal(clean)
	if err != nil {
		return domain.ColorTheme{}, fmt.Errorf("encode colors: %w", err)
	}
	if err := s.options.Put(ctx, domain.ColorsOptionKey, raw); err != nil {
		return domain.ColorTheme{}, fmt.Errorf("save colors: %w", err)
	}

	s.logger.InfoContext(ctx, "colors updated")
	return clean, nil
}

// Stylesheet returns the minified CSS of the current theme.
func (s *ThemeService) Stylesheet(ctx context.Context) (string, error) {
	theme, err := s.Colors(ctx)
	if err != nil {
		return "", err
	}
	return render.Stylesheet(theme), nil
}
