// Package api provides the HTTP API of the licenses service.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ivms-online/ivms-licenses-service/internal/api/handlers"
	"github.com/ivms-online/ivms-licenses-service/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API router.
type Config struct {
	// MaxBodyBytes bounds request bodies. Zero uses middleware.DefaultBodyLimit.
	MaxBodyBytes int64
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
	// Version information for the version endpoint.
	Version   string
	Commit    string
	BuildDate string
}

// DefaultConfig returns a Config with sensible defaults for development.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: middleware.DefaultBodyLimit,
		Version:      "dev",
		Commit:       "unknown",
		BuildDate:    "unknown",
	}
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router serving the license operations on top of licenses
// and reporting the health of store.
func NewRouter(
	cfg Config,
	licenses handlers.LicenseOperations,
	store handlers.StoreHealthChecker,
	logger zerolog.Logger,
) *Router {
	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultBodyLimit
	}

	// Global middleware
	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))
	r.Engine.Use(middleware.BodyLimitMiddleware(maxBody))

	handlers.NewHealthHandler(store, logger).RegisterPublicRoutes(r.Engine)
	handlers.NewMetricsHandler(cfg.Gatherer, logger).RegisterPublicRoutes(r.Engine)
	handlers.NewVersionHandler("licenses-server", cfg.Version, cfg.Commit, cfg.BuildDate, logger).RegisterPublicRoutes(r.Engine)

	apiV1 := r.Engine.Group("/api/v1")
	handlers.NewLicensesHandler(licenses, logger).RegisterRoutes(apiV1)

	r.logger.Debug().Msg("routes registered")
	return r
}
