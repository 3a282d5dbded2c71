package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MetricsHandler serves the Prometheus exposition endpoint.
type MetricsHandler struct {
	handler http.Handler
	logger  zerolog.Logger
}

// NewMetricsHandler creates a new MetricsHandler. A nil gatherer serves the default registry.
func NewMetricsHandler(gatherer prometheus.Gatherer, logger zerolog.Logger) *MetricsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	log := logger.With().Str("component", "metrics_handler").Logger()
	return &MetricsHandler{
		handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			ErrorLog:      promLogger{log},
			ErrorHandling: promhttp.ContinueOnError,
		}),
		logger: log,
	}
}

// RegisterPublicRoutes registers the metrics route.
func (h *MetricsHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/metrics", h.Metrics)
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}

// promLogger adapts zerolog to promhttp.Logger.
type promLogger struct {
	logger zerolog.Logger
}

func (l promLogger) Println(v ...any) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
