package httpclient

import (
	goerrors "errors"
	"fmt"

	ierr "github.com/billcraft/billcraft/internal/errors"
)

// Error represents a non-2xx response from the remote endpoint
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", ierr.ErrCodeHTTPClient, e.StatusCode)
}

// Is makes the error match ErrHTTPClient for errors.Is checks
func (e *Error) Is(target error) bool {
	return ierr.Is(target, ierr.ErrHTTPClient)
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Response:   response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
