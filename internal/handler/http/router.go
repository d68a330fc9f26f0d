package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/auth"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/health"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "sip-reviews"

// Dependencies are the collaborators the router mounts.
type Dependencies struct {
	Controller  *service.PaginationController
	Embed       *service.EmbedService
	Themes      *service.ThemeService
	Nonces      Nonces
	Tokens      middleware.TokenValidator
	Permissions auth.PermissionChecker
	Health      *health.Handler
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// Options tune the router.
type Options struct {
	AjaxURL        string
	CORS           middleware.CORSConfig
	AssetMaxAge    int
	PprofEnabled   bool
	PprofAllowlist []string
}

// NewRouter creates a chi router with all review routes registered.
func NewRouter(deps Dependencies, opts Options) http.Handler {
	logger := deps.Logger
	if deps.Permissions == nil {
		deps.Permissions = auth.ClaimsChecker{}
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(opts.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if opts.PprofEnabled {
		middleware.RegisterPprof(r, opts.PprofAllowlist, logger)
	}

	ajaxHandler := NewAjaxHandler(deps.Controller, deps.Nonces, opts.AjaxURL, logger)
	embedHandler := NewEmbedHandler(deps.Embed, logger)
	themeHandler := NewThemeHandler(deps.Themes, logger)

	// Storefront endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestLogger(logger))

		r.Get("/embed", embedHandler.Embed)
		r.Get("/products/{productID}/reviews", embedHandler.ProductReviews)
		r.With(middleware.CacheControl(opts.AssetMaxAge)).Get("/assets/sip-reviews.css", themeHandler.Stylesheet)
	})

	// AJAX endpoints
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Handler)
		}
		r.Use(middleware.NoStore)
		r.Use(middleware.RequestLogger(logger))

		r.Get("/api/v1/reviews/config", ajaxHandler.Config)

		r.Group(func(r chi.Router) {
			r.Use(ajaxHandler.RequireNonce)

			r.Post("/wp-admin/admin-ajax.php", ajaxHandler.Dispatch)
			r.Post("/api/v1/reviews/load-more", ajaxHandler.LoadMore)
			r.Post("/api/v1/reviews/filter", ajaxHandler.Filter)
		})
	})

	// Admin endpoints
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.Auth(deps.Tokens))
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.RequireCapability(deps.Permissions.Can, auth.CapabilityManageWooCommerce, auth.DeniedMessage))

		r.Get("/colors", themeHandler.GetColors)
		r.Put("/colors", themeHandler.UpdateColors)
	})

	return r
}
