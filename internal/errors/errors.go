package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")

	// Billing lifecycle errors
	ErrInvalidLineInput            = new(ErrCodeInvalidLineInput, "invalid line input")
	ErrInvalidReference            = new(ErrCodeInvalidReference, "unknown reference")
	ErrInvalidState                = new(ErrCodeInvalidState, "operation not allowed in current state")
	ErrDuplicateSubscriptionNumber = new(ErrCodeDuplicateSubscriptionNumber, "subscription number already in use")
	ErrInvalidPaymentMethod        = new(ErrCodeInvalidPaymentMethod, "invalid payment method")
	ErrAlreadySettled              = new(ErrCodeAlreadySettled, "invoice is already settled")
	ErrOverpaymentRejected         = new(ErrCodeOverpaymentRejected, "payment exceeds remaining balance")
	ErrConcurrentModification      = new(ErrCodeConcurrentModification, "concurrent modification detected")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrDatabase:                    http.StatusInternalServerError,
		ErrSystem:                      http.StatusInternalServerError,
		ErrHTTPClient:                  http.StatusInternalServerError,
		ErrNotFound:                    http.StatusNotFound,
		ErrAlreadyExists:               http.StatusConflict,
		ErrValidation:                  http.StatusBadRequest,
		ErrInvalidOperation:            http.StatusBadRequest,
		ErrInvalidLineInput:            http.StatusBadRequest,
		ErrInvalidReference:            http.StatusBadRequest,
		ErrInvalidState:                http.StatusConflict,
		ErrDuplicateSubscriptionNumber: http.StatusConflict,
		ErrInvalidPaymentMethod:        http.StatusBadRequest,
		ErrAlreadySettled:              http.StatusConflict,
		ErrOverpaymentRejected:         http.StatusBadRequest,
		ErrConcurrentModification:      http.StatusConflict,
	}
)

const (
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"
	ErrCodeHTTPClient       = "http_client_error"

	ErrCodeInvalidLineInput            = "invalid_line_input"
	ErrCodeInvalidReference            = "invalid_reference"
	ErrCodeInvalidState                = "invalid_state"
	ErrCodeDuplicateSubscriptionNumber = "duplicate_subscription_number"
	ErrCodeInvalidPaymentMethod        = "invalid_payment_method"
	ErrCodeAlreadySettled              = "already_settled"
	ErrCodeOverpaymentRejected         = "overpayment_rejected"
	ErrCodeConcurrentModification      = "concurrent_modification"
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

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
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

// IsInvalidState checks if an error is an invalid lifecycle state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsConcurrentModification reports whether the caller may safely retry
// after re-reading state
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// Code returns the stable machine-readable code for an error
func Code(err error) string {
	for e := range statusCodeMap {
		if errors.Is(err, e) {
			if ie, ok := e.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
