package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// VersionInfo contains build information of the running service.
type VersionInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

// VersionHandler serves build information.
type VersionHandler struct {
	info   VersionInfo
	logger zerolog.Logger
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(service, version, commit, buildDate string, logger zerolog.Logger) *VersionHandler {
	return &VersionHandler{
		info: VersionInfo{
			Service:   service,
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
			GoVersion: runtime.Version(),
		},
		logger: logger.With().Str("component", "version_handler").Logger(),
	}
}

// RegisterPublicRoutes registers the version route.
func (h *VersionHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/version", h.Get)
}

// Get returns the build information.
// GET /version
func (h *VersionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
