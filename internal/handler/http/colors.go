package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/httputil"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/middleware"
)

// ThemeHandler serves the themed stylesheet and the admin color settings.
type ThemeHandler struct {
	themes *service.ThemeService
	logger *slog.Logger
}

// NewThemeHandler creates a new theme handler.
func NewThemeHandler(themes *service.ThemeService, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{themes: themes, logger: logger}
}

// Stylesheet handles GET /assets/sip-reviews.css
func (h *ThemeHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	css, err := h.themes.Stylesheet(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

// GetColors handles GET /api/v1/admin/colors
// @Summary Read the color settings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/admin/colors [get]
func (h *ThemeHandler) GetColors(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.Colors(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, theme)
}

// UpdateColors handles PUT /api/v1/admin/colors. Missing or invalid colors
// are saved as their defaults.
// @Summary Replace the color settings
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/admin/colors [put]
func (h *ThemeHandler) UpdateColors(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var input domain.ColorTheme
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidArgument("invalid request body: "+err.Error()), h.logger)
		return
	}

	theme, err := h.themes.UpdateColors(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "color settings saved",
		slog.String("user_id", middleware.UserIDFromContext(r.Context())),
	)
	httputil.WriteSuccess(w, theme)
}
