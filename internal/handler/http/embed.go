package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/httputil"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/pagination"
)

// EmbedHandler serves the reviews shortcode as an HTML fragment.
type EmbedHandler struct {
	embed  *service.EmbedService
	logger *slog.Logger
}

// NewEmbedHandler creates a new embed handler.
func NewEmbedHandler(embed *service.EmbedService, logger *slog.Logger) *EmbedHandler {
	return &EmbedHandler{embed: embed, logger: logger}
}

// Embed handles GET /embed
// @Summary Render the reviews shortcode
// @Tags embed
// @Produce html
// @Param id query int true "Product ID"
// @Param limit query int false "Reviews on the first page" default(5)
// @Param schema query bool false "Append product JSON-LD"
// @Success 200 {string} string
// @Router /embed [get]
func (h *EmbedHandler) Embed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, 0)
}

// ProductReviews handles GET /products/{productID}/reviews. The path names
// the current product; a non-zero id query attribute overrides it.
func (h *EmbedHandler) ProductReviews(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, int64(pagination.Absint(chi.URLParam(r, "productID"))))
}

func (h *EmbedHandler) render(w http.ResponseWriter, r *http.Request, current int64) {
	q := r.URL.Query()

	req := service.EmbedRequest{
		ProductID: current,
		Limit:     pagination.Absint(q.Get("limit")),
		Schema:    parseBool(q.Get("schema")),
	}
	if id := pagination.Absint(q.Get("id")); id > 0 {
		req.ProductID = int64(id)
	}

	out, err := h.embed.Render(r.Context(), req)
	if errors.Is(err, apperrors.ErrNotFound) {
		httputil.WriteText(w, http.StatusOK, service.NoProductMessage)
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteHTML(w, http.StatusOK, out)
}

// parseBool accepts 1, true, on and yes in any case; anything else is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
