package http

import (
	"log/slog"
	"net/http"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/httputil"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/pagination"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/validator"
)

// AJAX actions understood by the admin-ajax dispatcher.
const (
	ActionLoadMore = "sip_rswc_load_more_reviews"
	ActionFilter   = "sip_rswc_filter_reviews_by_rating"
)

// NonceHeader may carry the nonce instead of the nonce form field.
const NonceHeader = "X-Sip-Nonce"

const (
	invalidRequestMessage = "Invalid request."
	invalidNonceMessage   = "Invalid security token."
)

// Nonces issues and verifies the token AJAX callers must echo back.
type Nonces interface {
	Issue() (string, error)
	Verify(nonce string) error
}

// AjaxHandler serves load-more and filter-by-rating requests.
type AjaxHandler struct {
	controller *service.PaginationController
	nonces     Nonces
	ajaxURL    string
	logger     *slog.Logger
}

// NewAjaxHandler creates a new AJAX handler. ajaxURL is advertised to the
// front-end script by Config.
func NewAjaxHandler(controller *service.PaginationController, nonces Nonces, ajaxURL string, logger *slog.Logger) *AjaxHandler {
	return &AjaxHandler{
		controller: controller,
		nonces:     nonces,
		ajaxURL:    ajaxURL,
		logger:     logger,
	}
}

// FilterRequest is the filter-by-rating input after coercion.
type FilterRequest struct {
	ProductID int64 `validate:"required,gt=0"`
	Rating    int   `validate:"required,min=1,max=5"`
}

// legacyLoadMore and legacyFilter keep the payload keys the bundled
// storefront script reads from admin-ajax.php.
type legacyLoadMore struct {
	HTML  string `json:"html"`
	Btn   bool   `json:"btn"`
	Txt   string `json:"txt"`
	Count int    `json:"count"`
}

type legacyFilter struct {
	HTML string `json:"html"`
	Done int    `json:"done"`
}

// ScriptConfig is the object the storefront script is configured with.
type ScriptConfig struct {
	AjaxURL string `json:"ajax_url"`
	Nonce   string `json:"nonce"`
}

// RequireNonce rejects requests without a valid nonce in the nonce form
// field or the X-Sip-Nonce header.
func (h *AjaxHandler) RequireNonce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := r.FormValue("nonce")
		if nonce == "" {
			nonce = r.Header.Get(NonceHeader)
		}
		if err := h.nonces.Verify(nonce); err != nil {
			h.logger.WarnContext(r.Context(), "nonce rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			httputil.WriteError(w, r, apperrors.PermissionDenied(invalidNonceMessage), h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Config handles GET /api/v1/reviews/config
// @Summary Storefront script configuration
// @Description Returns the AJAX endpoint and a fresh nonce
// @Tags reviews
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reviews/config [get]
func (h *AjaxHandler) Config(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.nonces.Issue()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, ScriptConfig{AjaxURL: h.ajaxURL, Nonce: nonce})
}

// LoadMore handles POST /api/v1/reviews/load-more
// @Summary Load the next page of reviews
// @Tags reviews
// @Accept x-www-form-urlencoded
// @Produce json
// @Param product_id formData int true "Product ID"
// @Param offset formData int false "Reviews already shown"
// @Param limit formData int false "Page size" default(5)
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/reviews/load-more [post]
func (h *AjaxHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadMore(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, result)
}

// Filter handles POST /api/v1/reviews/filter
// @Summary Filter reviews by star rating
// @Tags reviews
// @Accept x-www-form-urlencoded
// @Produce json
// @Param product_id formData int true "Product ID"
// @Param rating formData int true "Star rating (1-5)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/reviews/filter [post]
func (h *AjaxHandler) Filter(w http.ResponseWriter, r *http.Request) {
	result, ok := h.filter(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, result)
}

// Dispatch handles POST /wp-admin/admin-ajax.php by routing on the action
// field. Responses use the payload keys of the bundled storefront script.
func (h *AjaxHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	switch action := r.FormValue("action"); action {
	case ActionLoadMore:
		result, ok := h.loadMore(w, r)
		if !ok {
			return
		}
		httputil.WriteSuccess(w, legacyLoadMore{
			HTML:  result.HTML,
			Btn:   result.IsLastPage,
			Txt:   result.ButtonText,
			Count: result.RemainingCount,
		})
	case ActionFilter:
		result, ok := h.filter(w, r)
		if !ok {
			return
		}
		httputil.WriteSuccess(w, legacyFilter{HTML: result.HTML, Done: result.MatchCount})
	default:
		h.logger.DebugContext(r.Context(), "unknown ajax action", slog.String("action", action))
		httputil.WriteMessage(w, http.StatusBadRequest, invalidRequestMessage)
	}
}

func (h *AjaxHandler) loadMore(w http.ResponseWriter, r *http.Request) (*domain.LoadMoreResult, bool) {
	req := service.LoadMoreRequest{
		ProductID: int64(pagination.Intval(r.FormValue("product_id"))),
		Offset:    pagination.Intval(r.FormValue("offset")),
		Limit:     pagination.Intval(r.FormValue("limit")),
	}

	result, err := h.controller.LoadMore(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return result, true
}

func (h *AjaxHandler) filter(w http.ResponseWriter, r *http.Request) (*domain.FilterResult, bool) {
	req := FilterRequest{
		ProductID: int64(pagination.Intval(r.FormValue("product_id"))),
		Rating:    pagination.Intval(r.FormValue("rating")),
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err, invalidRequestMessage)
		return nil, false
	}

	result, err := h.controller.FilterByRating(r.Context(), req.ProductID, req.Rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return result, true
}
