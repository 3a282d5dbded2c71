// Package handlers implements the license operations shared by every entry point.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
	"github.com/rs/zerolog"
)

// LicenseStore defines the directory operations the handlers need.
type LicenseStore interface {
	CreateLicense(ctx context.Context, license models.License) error
	GetLicense(ctx context.Context, customerID, vesselID uuid.UUID, licenseKey string) (*models.License, error)
	DeleteLicense(ctx context.Context, customerID, vesselID uuid.UUID, licenseKey string) error
	ListLicenses(ctx context.Context, customerID, vesselID uuid.UUID, pageToken *string) (*models.ResultsPage[models.License, string], error)
}

// Licenses runs one store call per operation and maps the outcome onto APIError.
type Licenses struct {
	store    LicenseStore
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewLicenses creates a new Licenses handler.
func NewLicenses(store LicenseStore, logger zerolog.Logger) *Licenses {
	return &Licenses{
		store:    store,
		validate: newValidator(),
		logger:   logger.With().Str("component", "licenses_handler").Logger(),
	}
}

// newValidator reads the same "binding" tags gin does, reporting fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Licenses) check(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return invalidRequest(fmt.Errorf("%s is required", fe.Field()))
		}
		return invalidRequest(fmt.Errorf("%s failed %s check", fe.Field(), fe.Tag()))
	}
	return invalidRequest(err)
}

// Create stores the license, replacing any existing one, and returns its key.
func (h *Licenses) Create(ctx context.Context, req models.CreateLicenseRequest) (string, error) {
	if err := h.check(req); err != nil {
		return "", err
	}

	license := req.License()
	if err := h.store.CreateLicense(ctx, license); err != nil {
		return "", FromRuntime(err)
	}

	h.logger.Info().
		Str("customer_id", license.CustomerID.String()).
		Str("vessel_id", license.VesselID.String()).
		Str("license_key", license.LicenseKey).
		Msg("license created")

	return license.LicenseKey, nil
}

// Get returns a single license, or a not-found APIError.
func (h *Licenses) Get(ctx context.Context, req models.LicenseKeyRequest) (*models.LicenseResponse, error) {
	if err := h.check(req); err != nil {
		return nil, err
	}

	customerID, vesselID := req.Owner()
	license, err := h.store.GetLicense(ctx, customerID, vesselID, req.LicenseKey)
	if err != nil {
		return nil, FromRuntime(err)
	}
	if license == nil {
		return nil, NotFound(req.LicenseKey)
	}

	resp := models.NewLicenseResponse(*license)
	return &resp, nil
}

// Delete removes a license. Deleting a missing license succeeds.
func (h *Licenses) Delete(ctx context.Context, req models.LicenseKeyRequest) error {
	if err := h.check(req); err != nil {
		return err
	}

	customerID, vesselID := req.Owner()
	if err := h.store.DeleteLicense(ctx, customerID, vesselID, req.LicenseKey); err != nil {
		return FromRuntime(err)
	}

	h.logger.Info().
		Str("customer_id", customerID.String()).
		Str("vessel_id", vesselID.String()).
		Str("license_key", req.LicenseKey).
		Msg("license deleted")

	return nil
}

// List returns one page of a vessel's licenses.
func (h *Licenses) List(ctx context.Context, req models.ListLicensesRequest) (*models.ListLicensesResponse, error) {
	if err := h.check(req); err != nil {
		return nil, err
	}

	customerID, vesselID := req.Owner()
	page, err := h.store.ListLicenses(ctx, customerID, vesselID, req.PageToken)
	if err != nil {
		return nil, FromRuntime(err)
	}
	if page == nil {
		page = &models.ResultsPage[models.License, string]{}
	}

	resp := models.NewListLicensesResponse(*page)
	return &resp, nil
}
