// Package lambda adapts the license operations to the AWS Lambda runtime.
package lambda

import (
	"context"
	"errors"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambda/messages"
	"github.com/ivms-online/ivms-licenses-service/internal/handlers"
	"github.com/rs/zerolog"
)

// Error types reported to the invoker in the errorType field.
const (
	ErrorTypeLicenseNotFound = "LicenseNotFound"
	ErrorTypeRuntimeError    = "RuntimeError"
)

// HandlerFunc is a single license operation as invoked by the runtime.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Wrap converts errors returned by fn into the error payload the invoker expects.
// The error message is passed through unchanged.
func Wrap[Req, Resp any](logger zerolog.Logger, fn HandlerFunc[Req, Resp]) HandlerFunc[Req, Resp] {
	return func(ctx context.Context, req Req) (Resp, error) {
		resp, err := fn(ctx, req)
		if err != nil {
			invokeErr := InvokeError(err)
			logger.Error().Err(err).Str("error_type", invokeErr.Type).Msg("invocation failed")
			var zero Resp
			return zero, invokeErr
		}
		return resp, nil
	}
}

// InvokeError maps err onto the runtime error payload.
func InvokeError(err error) messages.InvokeResponse_Error {
	errorType := ErrorTypeRuntimeError
	if handlers.IsNotFound(err) {
		errorType = ErrorTypeLicenseNotFound
	}
	return messages.InvokeResponse_Error{
		Message: err.Error(),
		Type:    errorType,
	}
}

// Serve hands fn to the runtime event loop. It does not return; pending spans
// are flushed when the runtime sends SIGTERM.
func Serve[Req, Resp any](rt *Runtime, fn HandlerFunc[Req, Resp]) {
	awslambda.StartWithOptions(Wrap(rt.Logger, fn), awslambda.WithEnableSIGTERM(rt.Close))
}

// NewHandler returns fn as a runtime handler that takes and returns raw JSON payloads.
func NewHandler[Req, Resp any](logger zerolog.Logger, fn HandlerFunc[Req, Resp]) awslambda.Handler {
	return awslambda.NewHandler(Wrap(logger, fn))
}

// ErrorType returns the errorType the runtime reports for err, or "" when err
// is not a runtime error payload.
func ErrorType(err error) string {
	var invokeErr messages.InvokeResponse_Error
	if errors.As(err, &invokeErr) {
		return invokeErr.Type
	}
	return ""
}
