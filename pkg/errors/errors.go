package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used by the auth middleware and token service.
var (
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenIsNotRefresh    = errors.New("token is not a refresh token")
	ErrTokenIsNotAccess     = errors.New("token is not an access token")

	ErrEmptyAuthHeader    = errors.New("authorization header is missing")
	ErrInvalidAuthHeader  = errors.New("malformed authorization header")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	ErrUserIDNotFoundInContext = errors.New("user id not found in request context")
)

// HttpError carries the error kind (as an HTTP status code), a message
// safe to show to the caller, the underlying cause and optional details.
type HttpError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// Kind constructors. Services build every failure through one of these,
// the HTTP layer only translates Code to a response status.

// NewValidationError - missing or malformed input, the caller must fix the request.
func NewValidationError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusBadRequest, fmt.Sprintf(format, args...), nil, nil)
}

// NewNotFoundError - a referenced entity does not exist.
func NewNotFoundError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusNotFound, fmt.Sprintf(format, args...), nil, nil)
}

// NewNotEligibleError - the entity exists but fails a business precondition.
func NewNotEligibleError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusUnprocessableEntity, fmt.Sprintf(format, args...), nil, nil)
}

// NewConflictError - the operation would violate an invariant.
func NewConflictError(format string, args ...interface{}) *HttpError {
	return NewHttpError(http.StatusConflict, fmt.Sprintf(format, args...), nil, nil)
}

// NewStorageError - the underlying store failed, the cause is kept for
// logging but never shown to the caller.
func NewStorageError(err error) *HttpError {
	return NewHttpError(http.StatusInternalServerError, "internal storage error", err, nil)
}

// IsKind reports whether err is an *HttpError with the given code.
func IsKind(err error, code int) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == code
	}
	return false
}

func IsValidation(err error) bool  { return IsKind(err, http.StatusBadRequest) }
func IsNotFound(err error) bool    { return IsKind(err, http.StatusNotFound) }
func IsNotEligible(err error) bool { return IsKind(err, http.StatusUnprocessableEntity) }
func IsConflict(err error) bool    { return IsKind(err, http.StatusConflict) }
func IsStorage(err error) bool     { return IsKind(err, http.StatusInternalServerError) }
