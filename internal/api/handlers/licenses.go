package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ops "github.com/ivms-online/ivms-licenses-service/internal/handlers"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
	"github.com/rs/zerolog"
)

// LicenseOperations defines the license operations served over HTTP.
type LicenseOperations interface {
	Create(ctx context.Context, req models.CreateLicenseRequest) (string, error)
	Get(ctx context.Context, req models.LicenseKeyRequest) (*models.LicenseResponse, error)
	Delete(ctx context.Context, req models.LicenseKeyRequest) error
	List(ctx context.Context, req models.ListLicensesRequest) (*models.ListLicensesResponse, error)
}

// LicensesHandler handles license HTTP endpoints.
type LicensesHandler struct {
	ops    LicenseOperations
	logger zerolog.Logger
}

// NewLicensesHandler creates a new LicensesHandler.
func NewLicensesHandler(licenses LicenseOperations, logger zerolog.Logger) *LicensesHandler {
	return &LicensesHandler{
		ops:    licenses,
		logger: logger.With().Str("component", "licenses_handler").Logger(),
	}
}

// RegisterRoutes registers license routes on the given router group.
func (h *LicensesHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/licenses", h.Create)

	licenses := r.Group("/customers/:customerId/vessels/:vesselId/licenses")
	{
		licenses.GET("", h.List)
		licenses.GET("/:licenseKey", h.Get)
		licenses.DELETE("/:licenseKey", h.Delete)
	}
}

// Create stores a license and returns its key.
// POST /api/v1/licenses
func (h *LicensesHandler) Create(c *gin.Context) {
	var req models.CreateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	key, err := h.ops.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, key)
}

// Get returns a single license.
// GET /api/v1/customers/:customerId/vessels/:vesselId/licenses/:licenseKey
func (h *LicensesHandler) Get(c *gin.Context) {
	req, ok := h.licenseKeyRequest(c)
	if !ok {
		return
	}

	resp, err := h.ops.Get(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete removes a license.
// DELETE /api/v1/customers/:customerId/vessels/:vesselId/licenses/:licenseKey
func (h *LicensesHandler) Delete(c *gin.Context) {
	req, ok := h.licenseKeyRequest(c)
	if !ok {
		return
	}

	if err := h.ops.Delete(c.Request.Context(), req); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, nil)
}

// List returns one page of a vessel's licenses.
// GET /api/v1/customers/:customerId/vessels/:vesselId/licenses?pageToken=...
func (h *LicensesHandler) List(c *gin.Context) {
	customerID, vesselID, ok := h.owner(c)
	if !ok {
		return
	}

	req := models.ListLicensesRequest{
		CustomerID: &customerID,
		VesselID:   &vesselID,
	}
	if token := c.Query("pageToken"); token != "" {
		req.PageToken = &token
	}

	resp, err := h.ops.List(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LicensesHandler) owner(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer ID"})
		return uuid.Nil, uuid.Nil, false
	}
	vesselID, err := uuid.Parse(c.Param("vesselId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vessel ID"})
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, vesselID, true
}

func (h *LicensesHandler) licenseKeyRequest(c *gin.Context) (models.LicenseKeyRequest, bool) {
	customerID, vesselID, ok := h.owner(c)
	if !ok {
		return models.LicenseKeyRequest{}, false
	}
	return models.LicenseKeyRequest{
		CustomerID: &customerID,
		VesselID:   &vesselID,
		LicenseKey: c.Param("licenseKey"),
	}, true
}

func (h *LicensesHandler) writeError(c *gin.Context, err error) {
	switch {
	case ops.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ops.IsInvalidRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("license operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
