// Package invoker calls the deployed license functions through the Lambda API.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/ivms-online/ivms-licenses-service/internal/handlers"
	fn "github.com/ivms-online/ivms-licenses-service/internal/lambda"
	"github.com/ivms-online/ivms-licenses-service/internal/models"
	"github.com/rs/zerolog"
)

// ErrFunctionNotConfigured is returned when no function name is set for an operation.
var ErrFunctionNotConfigured = errors.New("function name not configured")

// LambdaAPI is the subset of the Lambda client used by the invoker.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// Functions names the deployed function of every operation.
type Functions struct {
	Creator string
	Fetcher string
	Deleter string
	Lister  string
}

// FunctionsFromEnv reads function names from CREATOR_LAMBDA, FETCHER_LAMBDA,
// DELETER_LAMBDA and LISTER_LAMBDA.
func FunctionsFromEnv() Functions {
	return Functions{
		Creator: os.Getenv("CREATOR_LAMBDA"),
		Fetcher: os.Getenv("FETCHER_LAMBDA"),
		Deleter: os.Getenv("DELETER_LAMBDA"),
		Lister:  os.Getenv("LISTER_LAMBDA"),
	}
}

// FunctionError is an error reported by a deployed function.
type FunctionError struct {
	Function string
	Type     string
	Message  string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes not-found failures as handlers.ErrLicenseNotFound.
func (e *FunctionError) Unwrap() error {
	if e.Type == fn.ErrorTypeLicenseNotFound {
		return handlers.ErrLicenseNotFound
	}
	return nil
}

// Client invokes the license functions synchronously.
type Client struct {
	api       LambdaAPI
	functions Functions
	logger    zerolog.Logger
}

// New creates a new Client.
func New(api LambdaAPI, functions Functions, logger zerolog.Logger) *Client {
	return &Client{
		api:       api,
		functions: functions,
		logger:    logger.With().Str("component", "invoker").Logger(),
	}
}

// Create stores a license and returns its key.
func (c *Client) Create(ctx context.Context, req models.CreateLicenseRequest) (string, error) {
	var key string
	if err := c.invoke(ctx, c.functions.Creator, req, &key); err != nil {
		return "", err
	}
	return key, nil
}

// Get returns a single license.
func (c *Client) Get(ctx context.Context, req models.LicenseKeyRequest) (*models.LicenseResponse, error) {
	var resp models.LicenseResponse
	if err := c.invoke(ctx, c.functions.Fetcher, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a license.
func (c *Client) Delete(ctx context.Context, req models.LicenseKeyRequest) error {
	return c.invoke(ctx, c.functions.Deleter, req, nil)
}

// List returns one page of a vessel's licenses.
func (c *Client) List(ctx context.Context, req models.ListLicensesRequest) (*models.ListLicensesResponse, error) {
	var resp models.ListLicensesResponse
	if err := c.invoke(ctx, c.functions.Lister, req, &resp); err != nil {
		return nil, err
	}
	if resp.Licenses == nil {
		resp.Licenses = []models.LicenseResponse{}
	}
	return &resp, nil
}

func (c *Client) invoke(ctx context.Context, function string, req, out any) error {
	if function == "" {
		return ErrFunctionNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	c.logger.Debug().Str("function", function).RawJSON("payload", payload).Msg("invoking function")

	resp, err := c.api.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(function),
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", function, err)
	}

	if resp.FunctionError != nil {
		var invokeErr messages.InvokeResponse_Error
		if err := json.Unmarshal(resp.Payload, &invokeErr); err != nil {
			return &FunctionError{Function: function, Type: aws.ToString(resp.FunctionError), Message: string(resp.Payload)}
		}
		return &FunctionError{Function: function, Type: invokeErr.Type, Message: invokeErr.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", function, err)
	}
	return nil
}
