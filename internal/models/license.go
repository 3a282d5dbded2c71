package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PartitionKeySeparator joins the customer and vessel IDs into the partition key.
const PartitionKeySeparator = ":"

// TimestampLayout is ISO-8601 with an explicit numeric offset, never "Z".
const TimestampLayout = "2006-01-02T15:04:05.999999999-07:00"

// FormatTimestamp renders t with its own offset, "+00:00" for UTC.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// License is a single license entitlement of a vessel owned by a customer.
type License struct {
	// CustomerID identifies the owner.
	CustomerID uuid.UUID `json:"customerId"`
	// VesselID identifies the vessel the license is assigned to.
	VesselID uuid.UUID `json:"vesselId"`
	// LicenseKey is unique within a customer+vessel pair.
	LicenseKey string `json:"licenseKey"`
	// Count is the number of license activations.
	Count *uint8 `json:"count,omitempty"`
	// ExpiresAt is the moment the license ends. The UTC offset is kept as given.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// PartitionKey returns the partition key the license is stored under.
func (l *License) PartitionKey() string {
	return PartitionKey(l.CustomerID, l.VesselID)
}

// PartitionKey derives the store partition key for a customer+vessel pair.
// It is never taken from the caller directly.
func PartitionKey(customerID, vesselID uuid.UUID) string {
	return customerID.String() + PartitionKeySeparator + vesselID.String()
}

// Owner IDs are pointers so an absent field is told apart from the all-zero UUID,
// which is a valid ID.

// CreateLicenseRequest represents a request to create or replace a license.
type CreateLicenseRequest struct {
	CustomerID *uuid.UUID `json:"customerId" binding:"required"`
	VesselID   *uuid.UUID `json:"vesselId" binding:"required"`
	LicenseKey string     `json:"licenseKey" binding:"required"`
	Count      *uint8     `json:"count,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Owner returns the customer and vessel IDs, uuid.Nil for an absent one.
func (r *CreateLicenseRequest) Owner() (customerID, vesselID uuid.UUID) {
	return idOf(r.CustomerID), idOf(r.VesselID)
}

// License converts the request into the stored entity.
func (r *CreateLicenseRequest) License() License {
	customerID, vesselID := r.Owner()
	return License{
		CustomerID: customerID,
		VesselID:   vesselID,
		LicenseKey: r.LicenseKey,
		Count:      r.Count,
		ExpiresAt:  r.ExpiresAt,
	}
}

// LicenseKeyRequest addresses a single license by its composite key.
// It is used by the fetch and delete operations.
type LicenseKeyRequest struct {
	CustomerID *uuid.UUID `json:"customerId" binding:"required"`
	VesselID   *uuid.UUID `json:"vesselId" binding:"required"`
	LicenseKey string     `json:"licenseKey" binding:"required"`
}

// Owner returns the customer and vessel IDs, uuid.Nil for an absent one.
func (r *LicenseKeyRequest) Owner() (customerID, vesselID uuid.UUID) {
	return idOf(r.CustomerID), idOf(r.VesselID)
}

// ListLicensesRequest represents a request for one page of a vessel's licenses.
type ListLicensesRequest struct {
	CustomerID *uuid.UUID `json:"customerId" binding:"required"`
	VesselID   *uuid.UUID `json:"vesselId" binding:"required"`
	PageToken  *string    `json:"pageToken,omitempty"`
}

// Owner returns the customer and vessel IDs, uuid.Nil for an absent one.
func (r *ListLicensesRequest) Owner() (customerID, vesselID uuid.UUID) {
	return idOf(r.CustomerID), idOf(r.VesselID)
}

func idOf(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// LicenseResponse is the public view of a license, without the owning IDs.
type LicenseResponse struct {
	LicenseKey string     `json:"licenseKey"`
	Count      *uint8     `json:"count,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// MarshalJSON writes expiresAt with its stored offset.
func (r LicenseResponse) MarshalJSON() ([]byte, error) {
	type plain LicenseResponse
	out := struct {
		plain
		ExpiresAt *string `json:"expiresAt,omitempty"`
	}{plain: plain(r)}
	if r.ExpiresAt != nil {
		expiresAt := FormatTimestamp(*r.ExpiresAt)
		out.ExpiresAt = &expiresAt
	}
	return json.Marshal(out)
}

// NewLicenseResponse builds the public view of a license.
func NewLicenseResponse(l License) LicenseResponse {
	return LicenseResponse{
		LicenseKey: l.LicenseKey,
		Count:      l.Count,
		ExpiresAt:  l.ExpiresAt,
	}
}

// ListLicensesResponse is a single page of licenses.
type ListLicensesResponse struct {
	Licenses  []LicenseResponse `json:"licenses"`
	PageToken *string           `json:"pageToken,omitempty"`
}

// NewListLicensesResponse builds the public view of a results page.
func NewListLicensesResponse(page ResultsPage[License, string]) ListLicensesResponse {
	licenses := make([]LicenseResponse, 0, len(page.Items))
	for _, l := range page.Items {
		licenses = append(licenses, NewLicenseResponse(l))
	}
	return ListLicensesResponse{
		Licenses:  licenses,
		PageToken: page.LastEvaluatedKey,
	}
}
