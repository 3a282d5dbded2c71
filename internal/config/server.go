// Package config provides configuration management for the licenses service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingEnv is returned when a required environment variable is not set.
var ErrMissingEnv = errors.New("required environment variable not present")

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds process-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment     Environment
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	TracingEnabled  bool
	TraceExporter   string // "stdout" or "none"
}

// LoadServerConfig reads process configuration from environment variables.
func LoadServerConfig() ServerConfig {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	shutdownTimeout := getEnvInt("SHUTDOWN_TIMEOUT", 15)
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15
	}

	traceExporter := strings.ToLower(os.Getenv("TRACE_EXPORTER"))
	switch traceExporter {
	case "stdout", "none":
	default:
		traceExporter = "stdout"
	}

	return ServerConfig{
		Environment:     env,
		LogLevel:        logLevel,
		HTTPAddr:        httpAddr,
		ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		TraceExporter:   traceExporter,
	}
}

// StoreConfig holds the DynamoDB table settings.
type StoreConfig struct {
	// TableName is the DynamoDB licenses table.
	TableName string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// LoadStoreConfig reads the store configuration.
//
// Required environment variables:
//
//	LICENSES_TABLE    name of the DynamoDB licenses table
//
// Optional:
//
//	DYNAMODB_ENDPOINT endpoint override
func LoadStoreConfig() (StoreConfig, error) {
	tableName, err := requireEnv("LICENSES_TABLE")
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		TableName: tableName,
		Endpoint:  strings.TrimSpace(os.Getenv("DYNAMODB_ENDPOINT")),
	}, nil
}

// requireEnv reads an environment variable that must be set and non-empty.
func requireEnv(key string) (string, error) {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return "", fmt.Errorf("%s: %w", key, ErrMissingEnv)
	}
	return val, nil
}

// getEnvBool reads a boolean from an environment variable, returning the default if unset or invalid.
func getEnvBool(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
