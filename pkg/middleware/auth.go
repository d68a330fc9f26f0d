package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/httputil"
)

type contextKeyType string

const claimsKey contextKeyType = "claims"

// Claims are the caller attributes extracted from a bearer token.
type Claims struct {
	UserID       string   `json:"user_id"`
	Capabilities []string `json:"capabilities"`
}

// Can reports whether the claims grant capability.
func (c *Claims) Can(capability string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Capabilities, capability)
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth validates the Authorization bearer token and stores the claims in
// the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("missing authorization header"), nil)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), nil)
				return
			}

			claims, err := validate(token)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// CapabilityFunc reports whether the caller of ctx holds capability.
type CapabilityFunc func(ctx context.Context, capability string) bool

// ClaimsCan is a CapabilityFunc backed by the claims stored by Auth.
func ClaimsCan(ctx context.Context, capability string) bool {
	return ClaimsFromContext(ctx).Can(capability)
}

// RequireCapability rejects callers for whom can reports false with a 403
// carrying message. A nil can means ClaimsCan.
func RequireCapability(can CapabilityFunc, capability, message string) func(http.Handler) http.Handler {
	if can == nil {
		can = ClaimsCan
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !can(r.Context(), capability) {
				httputil.WriteError(w, r, apperrors.PermissionDenied(message), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims stored by Auth, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.UserID
	}
	return ""
}
