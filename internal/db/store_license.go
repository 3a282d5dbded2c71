package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
)

// keyConditionExpression restricts a query to a single partition.
const keyConditionExpression = AttrPartitionKey + " = :" + AttrPartitionKey

// CreateLicense stores a license, replacing in full any license with the same composite key.
func (db *DB) CreateLicense(ctx context.Context, license models.License) error {
	item, err := marshalLicense(license)
	if err != nil {
		return err
	}

	return db.call(ctx, "PutItem", KindPutItem, func(ctx context.Context) error {
		_, err := db.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(db.tableName),
			Item:      item,
		})
		return err
	})
}

// GetLicense returns a single license.
// Returns nil if no license exists under the composite key.
func (db *DB) GetLicense(ctx context.Context, customerID, vesselID uuid.UUID, licenseKey string) (*models.License, error) {
	var out *dynamodb.GetItemOutput
	err := db.call(ctx, "GetItem", KindGetItem, func(ctx context.Context) error {
		var err error
		out, err = db.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(db.tableName),
			Key:       primaryKey(customerID, vesselID, licenseKey),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	license, err := unmarshalLicense(out.Item)
	if err != nil {
		return nil, err
	}
	return &license, nil
}

// DeleteLicense removes a license. Deleting a license that does not exist succeeds.
func (db *DB) DeleteLicense(ctx context.Context, customerID, vesselID uuid.UUID, licenseKey string) error {
	return db.call(ctx, "DeleteItem", KindDeleteItem, func(ctx context.Context) error {
		_, err := db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(db.tableName),
			Key:       primaryKey(customerID, vesselID, licenseKey),
		})
		return err
	})
}

// ListLicenses returns one page of a vessel's licenses in ascending license key order.
//
// The page size is whatever a single query returns. When pageToken is set the scan resumes
// strictly after that license key, inside the partition derived from customerID and vesselID
// on this call. The token is not bound to the partition it was issued for.
func (db *DB) ListLicenses(ctx context.Context, customerID, vesselID uuid.UUID, pageToken *string) (*models.ResultsPage[models.License, string], error) {
	key := models.PartitionKey(customerID, vesselID)

	input := &dynamodb.QueryInput{
		TableName:              aws.String(db.tableName),
		KeyConditionExpression: aws.String(keyConditionExpression),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":" + AttrPartitionKey: stringValue(key),
		},
		ScanIndexForward: aws.Bool(true),
	}
	if pageToken != nil {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			AttrPartitionKey: stringValue(key),
			AttrLicenseKey:   stringValue(*pageToken),
		}
	}

	var out *dynamodb.QueryOutput
	err := db.call(ctx, "Query", KindQuery, func(ctx context.Context) error {
		var err error
		out, err = db.client.Query(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &models.ResultsPage[models.License, string]{
		Items: []models.License{},
	}
	if out == nil {
		return page, nil
	}

	if page.Items, err = unmarshalLicenses(out.Items); err != nil {
		return nil, err
	}
	if page.LastEvaluatedKey, err = cursorOf(out.LastEvaluatedKey); err != nil {
		return nil, err
	}
	return page, nil
}
