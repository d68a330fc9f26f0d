package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/auth"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/health"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/middleware"
)

// =============================================================================
// Mock ReviewReader
// =============================================================================

type mockReader struct {
	mock.Mock
}

func (m *mockReader) TotalApprovedCount(ctx context.Context, productID int64) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *mockReader) FirstPage(ctx context.Context, productID int64, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReader) Page(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error) {
	args := m.Called(ctx, productID, limit, offset)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReader) ByRating(ctx context.Context, productID int64, rating int) ([]domain.Review, error) {
	args := m.Called(ctx, productID, rating)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReader) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockReader) MaxWindow() int {
	return 100
}

// =============================================================================
// Stubs
// =============================================================================

const (
	goodNonce   = "nonce-ok"
	adminToken  = "admin-token"
	viewerToken = "viewer-token"
	testAjaxURL = "http://shop.test/wp-admin/admin-ajax.php"
)

type stubNonces struct{}

func (stubNonces) Issue() (string, error) {
	return goodNonce, nil
}

func (stubNonces) Verify(nonce string) error {
	if nonce != goodNonce {
		return auth.ErrInvalidNonce
	}
	return nil
}

func stubTokens(token string) (*middleware.Claims, error) {
	switch token {
	case adminToken:
		return &middleware.Claims{UserID: "1", Capabilities: []string{auth.CapabilityManageWooCommerce}}, nil
	case viewerToken:
		return &middleware.Claims{UserID: "2", Capabilities: []string{"read"}}, nil
	}
	return nil, auth.ErrInvalidToken
}

type memoryOptions struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (m *memoryOptions) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, apperrors.NotFound("option not found")
	}
	return v, nil
}

func (m *memoryOptions) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = value
	return nil
}

// =============================================================================
// Test helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

var reviewTime = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func reviews(productID int64, n int, rating int) []domain.Review {
	out := make([]domain.Review, n)
	for i := range out {
		out[i] = domain.Review{
			ID:             int64(i + 1),
			ProductID:      productID,
			AuthorName:     "Reviewer",
			Body:           "Solid product",
			Rating:         rating,
			PublishedAt:    reviewTime.Add(-time.Duration(i) * time.Hour),
			ApprovalStatus: domain.ApprovalApproved,
		}
	}
	return out
}

type testServer struct {
	handler http.Handler
	reader  *mockReader
	options *memoryOptions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testLogger()
	reader := &mockReader{}
	options := &memoryOptions{}

	renderer := render.NewRenderer(nil, render.Options{})
	controller := service.NewPaginationController(reader, renderer, logger)
	schema := service.NewSchemaService(reader, service.SchemaConfig{
		BaseURL:  "http://shop.test",
		Currency: "USD",
		Country:  "US",
	}, logger)
	embed := service.NewEmbedService(reader, controller, schema, renderer, logger)
	themes := service.NewThemeService(options, nil, logger)

	handler := NewRouter(Dependencies{
		Controller: controller,
		Embed:      embed,
		Themes:     themes,
		Nonces:     stubNonces{},
		Tokens:     stubTokens,
		Health:     health.NewHandler(),
		Logger:     logger,
	}, Options{
		AjaxURL:     testAjaxURL,
		CORS:        middleware.DefaultCORSConfig(),
		AssetMaxAge: 3600,
	})

	t.Cleanup(func() { reader.AssertExpectations(t) })
	return &testServer{handler: handler, reader: reader, options: options}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

var errStore = errors.New("store unavailable")
