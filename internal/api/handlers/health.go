package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult represents the result of a health check.
type HealthCheckResult struct {
	Status   HealthStatus   `json:"status"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status HealthStatus                  `json:"status"`
	Checks map[string]*HealthCheckResult `json:"checks,omitempty"`
	Error  string                        `json:"error,omitempty"`
}

// StoreHealthChecker defines the interface for licenses table health checking.
type StoreHealthChecker interface {
	Ping(ctx context.Context) error
	Health() map[string]any
}

// HealthHandler handles health-related HTTP endpoints.
type HealthHandler struct {
	store  StoreHealthChecker
	logger zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store StoreHealthChecker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger.With().Str("component", "health_handler").Logger(),
	}
}

// RegisterPublicRoutes registers health check routes.
func (h *HealthHandler) RegisterPublicRoutes(r *gin.Engine) {
	health := r.Group("/health")
	{
		health.GET("", h.Overall)
		health.GET("/live", h.Live)
	}
}

// Overall returns the service health including the licenses table.
// GET /health
func (h *HealthHandler) Overall(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result := h.checkStore(ctx)
	response := &HealthResponse{
		Status: result.Status,
		Checks: map[string]*HealthCheckResult{
			"store": result,
		},
	}

	if result.Status == HealthStatusUnhealthy {
		response.Error = result.Error
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Live reports that the process is serving requests.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, &HealthResponse{Status: HealthStatusHealthy})
}

func (h *HealthHandler) checkStore(ctx context.Context) *HealthCheckResult {
	start := time.Now()
	result := &HealthCheckResult{
		Status: HealthStatusHealthy,
	}

	if h.store == nil {
		result.Status = HealthStatusUnhealthy
		result.Error = "store not configured"
		result.Duration = time.Since(start).String()
		return result
	}

	err := h.store.Ping(ctx)
	result.Duration = time.Since(start).String()
	result.Details = h.store.Health()

	if err != nil {
		result.Status = HealthStatusUnhealthy
		result.Error = "store ping failed"
		h.logger.Warn().Err(err).Msg("store health check failed")
	}

	return result
}
