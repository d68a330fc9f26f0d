package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const denied = "You do not have permission to access this page."

func staticValidator(claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		if token != "good-token" {
			return nil, errors.New("bad token")
		}
		return claims, nil
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	h := Auth(staticValidator(&Claims{UserID: "1"}))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/colors", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_BadScheme(t *testing.T) {
	h := Auth(staticValidator(&Claims{UserID: "1"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization header format")
}

func TestAuth_InvalidToken(t *testing.T) {
	h := Auth(staticValidator(&Claims{UserID: "1"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuth_StoresClaims(t *testing.T) {
	var got *Claims
	h := Auth(staticValidator(&Claims{UserID: "7", Capabilities: []string{"manage_woocommerce"}}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = ClaimsFromContext(r.Context())
			assert.Equal(t, "7", UserIDFromContext(r.Context()))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.True(t, got.Can("manage_woocommerce"))
	assert.False(t, got.Can("edit_posts"))
}

func TestRequireCapability(t *testing.T) {
	h := Auth(staticValidator(&Claims{UserID: "7", Capabilities: []string{"read"}}))(
		RequireCapability(ClaimsCan, "manage_woocommerce", denied)(okHandler()),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), denied)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireCapability_NoClaims(t *testing.T) {
	h := RequireCapability(nil, "manage_woocommerce", denied)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireCapability_CustomChecker(t *testing.T) {
	var asked string
	can := func(_ context.Context, capability string) bool {
		asked = capability
		return true
	}
	h := RequireCapability(can, "manage_woocommerce", denied)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "manage_woocommerce", asked)
}

func TestClaims_NilCan(t *testing.T) {
	var c *Claims
	assert.False(t, c.Can("anything"))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
