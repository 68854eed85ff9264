package ginserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newHealthRouter(checks map[string]HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterHealthRoutes(router, HealthOptions{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Checks:         checks,
	})
	return router
}

func getHealth(t *testing.T, router *gin.Engine) (int, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return rec.Code, resp
}

func TestHealth_NoChecks(t *testing.T) {
	code, resp := getHealth(t, newHealthRouter(nil))

	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Status != HealthStatusHealthy {
		t.Errorf("health = %s", resp.Status)
	}
	if resp.Service != "test-service" {
		t.Errorf("service = %q", resp.Service)
	}
}

func TestHealth_UnhealthyDatabase(t *testing.T) {
	checks := map[string]HealthChecker{
		"database": DatabaseHealthChecker(func() error { return errors.New("down") }),
	}
	code, resp := getHealth(t, newHealthRouter(checks))

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if resp.Status != HealthStatusUnhealthy {
		t.Errorf("health = %s", resp.Status)
	}
	if resp.Checks["database"].Status != HealthStatusUnhealthy {
		t.Errorf("database check = %s", resp.Checks["database"].Status)
	}
}

func TestHealth_DegradedRedisStillServes(t *testing.T) {
	checks := map[string]HealthChecker{
		"database": DatabaseHealthChecker(func() error { return nil }),
		"redis":    RedisHealthChecker(func() error { return errors.New("down") }),
	}
	code, resp := getHealth(t, newHealthRouter(checks))

	if code != http.StatusOK {
		t.Fatalf("status = %d, degraded must still return 200", code)
	}
	if resp.Status != HealthStatusDegraded {
		t.Errorf("health = %s", resp.Status)
	}
}

func TestHealth_Head(t *testing.T) {
	router := newHealthRouter(nil)
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
