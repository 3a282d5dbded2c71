package handlers

import (
	"errors"
	"fmt"
)

var (
	// ErrLicenseNotFound is matched by every not-found APIError.
	ErrLicenseNotFound = errors.New("license not found")
	// ErrInvalidRequest is matched by every request validation failure.
	ErrInvalidRequest = errors.New("invalid request")
)

// APIError is the error returned by the license operations.
//
// It is either a not-found condition for a single license key or a transparent
// wrapper around an infrastructure failure: in the latter case Error returns
// the cause's message unchanged.
type APIError struct {
	// LicenseKey is set for not-found errors only.
	LicenseKey string
	Err        error
}

// NotFound reports that no license exists under licenseKey.
func NotFound(licenseKey string) *APIError {
	return &APIError{LicenseKey: licenseKey, Err: ErrLicenseNotFound}
}

// FromRuntime wraps an infrastructure error. A nil err stays nil and an
// APIError is returned as is.
func FromRuntime(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &APIError{Err: err}
}

func invalidRequest(err error) *APIError {
	return &APIError{Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
}

func (e *APIError) Error() string {
	if e.IsNotFound() {
		return fmt.Sprintf("%v: %s", ErrLicenseNotFound, e.LicenseKey)
	}
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether e is the not-found case.
func (e *APIError) IsNotFound() bool {
	return errors.Is(e.Err, ErrLicenseNotFound)
}

// IsNotFound reports whether err carries a not-found APIError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLicenseNotFound)
}

// IsInvalidRequest reports whether err is a request validation failure.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
