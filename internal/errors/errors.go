package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = New(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = New(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = New(ErrCodeValidation, "validation error")
	ErrInvalidOperation = New(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied = New(ErrCodePermissionDenied, "permission denied")
	ErrRateLimited      = New(ErrCodeRateLimited, "rate limited")
	ErrHTTPClient       = New(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = New(ErrCodeDatabase, "database error")
	ErrSystem           = New(ErrCodeSystemError, "system error")

	// Tariff estimation errors
	ErrInvalidUsage      = New(ErrCodeInvalidUsage, "invalid usage quantity")
	ErrMissingTierData   = New(ErrCodeMissingTierData, "missing tier data")
	ErrMisconfiguredPlan = New(ErrCodeMisconfiguredPlan, "misconfigured plan")

	// maps errors to http status codes, the first matching mark wins so the
	// generic infrastructure errors are listed last
	statusCodes = []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrInvalidUsage, http.StatusBadRequest},
		{ErrMissingTierData, http.StatusUnprocessableEntity},
		{ErrMisconfiguredPlan, http.StatusUnprocessableEntity},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidOperation, http.StatusBadRequest},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrHTTPClient, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

const (
	ErrCodeHTTPClient        = "http_client_error"
	ErrCodeSystemError       = "system_error"
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeValidation        = "validation_error"
	ErrCodeInvalidOperation  = "invalid_operation"
	ErrCodePermissionDenied  = "permission_denied"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeDatabase          = "database_error"
	ErrCodeInvalidUsage      = "invalid_usage"
	ErrCodeMissingTierData   = "missing_tier_data"
	ErrCodeMisconfiguredPlan = "misconfigured_plan"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func New(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsInvalidUsage checks if an error was raised for a negative or non-numeric usage
func IsInvalidUsage(err error) bool {
	return errors.Is(err, ErrInvalidUsage)
}

// IsMissingTierData checks if an error was raised for an absent tier table or an unmatched bracket
func IsMissingTierData(err error) bool {
	return errors.Is(err, ErrMissingTierData)
}

// IsMisconfiguredPlan checks if an error was raised for an unknown estimate method
func IsMisconfiguredPlan(err error) bool {
	return errors.Is(err, ErrMisconfiguredPlan)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
