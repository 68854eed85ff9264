package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/handler"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/summarizer"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
)

const testSecret = "test-secret"

type stubStore struct{}

func (stubStore) CreateLink(_ context.Context, rec *domain.LinkRecord) error {
	rec.ID = "link-1"
	return nil
}

func (stubStore) MarkProcessedNoContent(context.Context, string, string) error { return nil }

type stubQueue struct{}

func (stubQueue) Enqueue(summarizer.Job) bool { return true }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	links := handler.NewLinksHandler(stubStore{}, stubQueue{},
		summarizer.Config{BaseURL: "http://summarizer", ServiceKey: "k"},
		logger.NewNop(), m)

	srv := NewServer(Options{
		ServiceName: "linklens-ingestion",
		Version:     "test",
		Port:        0,
		JWTSecret:   testSecret,
		Links:       links,
		Logger:      logger.NewNop(),
		Registry:    registry,
	})
	return srv.Router()
}

func bearerToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_MetricsIsPublic(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_LinksRequiresAuth(t *testing.T) {
	router := newTestServer(t)

	body := `{"url":"https://example.com/a","title":"A"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_LinksCreateWithToken(t *testing.T) {
	router := newTestServer(t)

	body := `{"url":"https://example.com/a","title":"A"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/links", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"link-1"`)
}
