package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ivms-online/ivms-licenses-service/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewStoreMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	m.Observe("GetItem", 15*time.Millisecond, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewMetricsHandler(reg, zerolog.Nop()).RegisterPublicRoutes(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `licenses_store_requests_total{operation="GetItem",status="success"} 1`) {
		t.Errorf("expected request counter in output, got:\n%s", body)
	}
	if !strings.Contains(body, "licenses_store_request_duration_seconds") {
		t.Errorf("expected duration histogram in output, got:\n%s", body)
	}
}
