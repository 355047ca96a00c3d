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
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrUnauthenticated  = new(ErrCodeUnauthenticated, "unauthenticated")
	ErrUnauthorized     = new(ErrCodeUnauthorized, "credentials rejected upstream")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	ErrInternal         = new(ErrCodeInternalError, "internal error")

	// Payment orchestration taxonomy. Only authorization and gateway failures
	// in the create branch abort a run, the other two are logged and absorbed.
	ErrAuthorization = new(ErrCodeAuthorization, "gateway authorization failed")
	ErrGateway       = new(ErrCodeGateway, "gateway invoice creation failed")
	ErrPersistence   = new(ErrCodePersistence, "ledger write failed")
	ErrPolling       = new(ErrCodePolling, "payment status check failed")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:       http.StatusInternalServerError,
		ErrDatabase:         http.StatusInternalServerError,
		ErrNotFound:         http.StatusNotFound,
		ErrAlreadyExists:    http.StatusConflict,
		ErrValidation:       http.StatusBadRequest,
		ErrInvalidOperation: http.StatusBadRequest,
		ErrPermissionDenied: http.StatusForbidden,
		ErrUnauthenticated:  http.StatusUnauthorized,
		ErrUnauthorized:     http.StatusUnauthorized,
		ErrSystem:           http.StatusInternalServerError,
		ErrInternal:         http.StatusInternalServerError,
		ErrAuthorization:    http.StatusBadGateway,
		ErrGateway:          http.StatusBadGateway,
		ErrPersistence:      http.StatusInternalServerError,
		ErrPolling:          http.StatusBadGateway,
	}

	// statusCheckOrder makes HTTPStatusFromErr deterministic when an error
	// carries several marks, the most specific first
	statusCheckOrder = []error{
		ErrUnauthenticated,
		ErrUnauthorized,
		ErrPermissionDenied,
		ErrAuthorization,
		ErrGateway,
		ErrPolling,
		ErrPersistence,
		ErrValidation,
		ErrInvalidOperation,
		ErrNotFound,
		ErrAlreadyExists,
		ErrHTTPClient,
		ErrDatabase,
		ErrInternal,
		ErrSystem,
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeInternalError    = "internal_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeUnauthenticated  = "unauthenticated"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeDatabase         = "database_error"
	ErrCodeAuthorization    = "authorization_error"
	ErrCodeGateway          = "gateway_error"
	ErrCodePersistence      = "persistence_error"
	ErrCodePolling          = "polling_error"
)

// ReauthenticateHint is the uniform user message for any unauthorized collaborator response
const ReauthenticateHint = "Please sign in again"

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

// New creates a new InternalError with the given code
func New(code string, message string) *InternalError {
	return new(code, message)
}

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

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsUnauthenticated checks if an error is an unauthenticated error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsUnauthorized reports whether the caller is unauthenticated or an upstream
// collaborator rejected the service's credentials, in which case the user is
// asked to sign in again. Role checks marked PermissionDenied keep their hint.
func IsUnauthorized(err error) bool {
	return IsUnauthenticated(err) || errors.Is(err, ErrUnauthorized)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsAuthorization checks if an error is a gateway authorization error
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrAuthorization)
}

// IsGateway checks if an error is a gateway invoice creation error
func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}

// IsPersistence checks if an error is a ledger write error
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsPolling checks if an error is a status check error
func IsPolling(err error) bool {
	return errors.Is(err, ErrPolling)
}

func HTTPStatusFromErr(err error) int {
	for _, e := range statusCheckOrder {
		if errors.Is(err, e) {
			return statusCodeMap[e]
		}
	}
	return http.StatusInternalServerError
}
