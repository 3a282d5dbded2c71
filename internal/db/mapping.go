package db

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
)

// Attribute names of the licenses table.
const (
	AttrPartitionKey = "customerAndVesselId"
	AttrCustomerID   = "customerId"
	AttrVesselID     = "vesselId"
	AttrLicenseKey   = "licenseKey"
	AttrCount        = "count"
	AttrExpiresAt    = "expiresAt"
)

// ExpiresAtLayout is the stored expiresAt format.
const ExpiresAtLayout = models.TimestampLayout

// licenseItem is the stored shape of a license, minus the derived partition key.
type licenseItem struct {
	CustomerID string  `dynamodbav:"customerId"`
	VesselID   string  `dynamodbav:"vesselId"`
	LicenseKey string  `dynamodbav:"licenseKey"`
	Count      *uint8  `dynamodbav:"count,omitempty"`
	ExpiresAt  *string `dynamodbav:"expiresAt,omitempty"`
}

// marshalLicense converts a license into its attribute map, including the partition key.
func marshalLicense(l models.License) (map[string]types.AttributeValue, error) {
	item := licenseItem{
		CustomerID: l.CustomerID.String(),
		VesselID:   l.VesselID.String(),
		LicenseKey: l.LicenseKey,
		Count:      l.Count,
	}
	if l.ExpiresAt != nil {
		expiresAt := models.FormatTimestamp(*l.ExpiresAt)
		item.ExpiresAt = &expiresAt
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, newError(KindSerialization, err)
	}
	av[AttrPartitionKey] = stringValue(l.PartitionKey())
	return av, nil
}

// unmarshalLicense converts a stored attribute map back into a license.
func unmarshalLicense(av map[string]types.AttributeValue) (models.License, error) {
	var item licenseItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return models.License{}, newError(KindSerialization, err)
	}

	customerID, err := uuid.Parse(item.CustomerID)
	if err != nil {
		return models.License{}, dataError(AttrCustomerID, "invalid UUID %q: %w", item.CustomerID, err)
	}
	vesselID, err := uuid.Parse(item.VesselID)
	if err != nil {
		return models.License{}, dataError(AttrVesselID, "invalid UUID %q: %w", item.VesselID, err)
	}

	l := models.License{
		CustomerID: customerID,
		VesselID:   vesselID,
		LicenseKey: item.LicenseKey,
		Count:      item.Count,
	}
	if item.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339Nano, *item.ExpiresAt)
		if err != nil {
			return models.License{}, dataError(AttrExpiresAt, "invalid timestamp %q: %w", *item.ExpiresAt, err)
		}
		l.ExpiresAt = &expiresAt
	}
	return l, nil
}

func unmarshalLicenses(items []map[string]types.AttributeValue) ([]models.License, error) {
	licenses := make([]models.License, 0, len(items))
	for _, av := range items {
		l, err := unmarshalLicense(av)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, nil
}

// primaryKey builds the composite key of a single license.
func primaryKey(customerID, vesselID uuid.UUID, licenseKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPartitionKey: stringValue(models.PartitionKey(customerID, vesselID)),
		AttrLicenseKey:   stringValue(licenseKey),
	}
}

// cursorOf extracts the sort key from a LastEvaluatedKey, nil when the scan is complete.
func cursorOf(lastEvaluatedKey map[string]types.AttributeValue) (*string, error) {
	if len(lastEvaluatedKey) == 0 {
		return nil, nil
	}
	av, ok := lastEvaluatedKey[AttrLicenseKey]
	if !ok {
		return nil, dataError(AttrLicenseKey, "missing from last evaluated key")
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return nil, dataError(AttrLicenseKey, "expected string attribute, got %T", av)
	}
	cursor := s.Value
	return &cursor, nil
}

func stringValue(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}
