package httpclient

import (
	"net/http"

	ierr "github.com/flexprice/tariff/internal/errors"
)

// Error represents a non-2xx answer from an upstream service
type Error struct {
	*ierr.InternalError
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError
}

func (e *Error) Error() string {
	return e.InternalError.Error()
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: ierr.New(ierr.ErrCodeHTTPClient, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		Response:      response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if ierr.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsNotFound reports whether the upstream answered 404
func IsNotFound(err error) bool {
	httpErr, ok := IsHTTPError(err)
	return ok && httpErr.StatusCode == http.StatusNotFound
}
