// Package db provides the DynamoDB-backed licenses directory.
package db

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ivms-online/ivms-licenses-service/internal/config"
	"github.com/ivms-online/ivms-licenses-service/internal/metrics"
	"github.com/ivms-online/ivms-licenses-service/internal/telemetry"
	"github.com/rs/zerolog"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the directory.
// *dynamodb.Client satisfies it and is safe for concurrent use.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// regionResolver is implemented by *dynamodb.Client.
type regionResolver interface {
	Options() dynamodb.Options
}

// DB is the licenses directory access layer.
// It holds no per-request state; every call goes straight to the table.
type DB struct {
	client    DynamoDBAPI
	tableName string
	region    string
	spans     *telemetry.SpanFactory
	metrics   *metrics.StoreMetrics
	logger    zerolog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithSpanFactory sets the factory used to trace store calls.
func WithSpanFactory(f *telemetry.SpanFactory) Option {
	return func(db *DB) {
		db.spans = f
	}
}

// WithMetrics records every store call in m.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(db *DB) {
		db.metrics = m
	}
}

// WithRegion overrides the region reported on spans.
func WithRegion(region string) Option {
	return func(db *DB) {
		db.region = region
	}
}

// New creates a DB on top of an existing client.
func New(client DynamoDBAPI, tableName string, logger zerolog.Logger, opts ...Option) *DB {
	db := &DB{
		client:    client,
		tableName: tableName,
		logger:    logger.With().Str("component", "db").Str("table", tableName).Logger(),
	}
	if r, ok := client.(regionResolver); ok {
		db.region = r.Options().Region
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.spans == nil {
		db.spans = telemetry.NewSpanFactory(nil, logger)
	}
	return db
}

// NewClient builds a DynamoDB client from the default AWS configuration chain.
func NewClient(ctx context.Context, cfg config.StoreConfig, optFns ...func(*awsconfig.LoadOptions) error) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}

// LoadFromEnv creates a DB from the process environment.
// A missing LICENSES_TABLE is reported as KindClientConfigLoading.
func LoadFromEnv(ctx context.Context, logger zerolog.Logger, opts ...Option) (*DB, error) {
	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return nil, newError(KindClientConfigLoading, err)
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, newError(KindClientConfigLoading, err)
	}

	db := New(client, cfg.TableName, logger, opts...)
	db.logger.Info().Str("region", db.region).Msg("licenses table client configured")
	return db, nil
}

// TableName returns the licenses table name.
func (db *DB) TableName() string {
	return db.tableName
}

// Region returns the store region, empty when unknown.
func (db *DB) Region() string {
	return db.region
}

// Ping verifies the table is reachable.
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(db.tableName),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", db.tableName, err)
	}
	return nil
}

// Health returns basic information about the store connection.
func (db *DB) Health() map[string]any {
	return map[string]any{
		"table":  db.tableName,
		"region": db.region,
	}
}
