package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidUsername  ErrorCode = "INVALID_USERNAME"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeNameTooLong      ErrorCode = "NAME_TOO_LONG"
	ErrCodeInvalidAction    ErrorCode = "INVALID_ACTION"
	ErrCodeInvalidInterval  ErrorCode = "INVALID_INTERVAL"

	ErrCodeSessionMissing ErrorCode = "SESSION_MISSING"
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	ErrCodeBadCredentials ErrorCode = "BAD_CREDENTIALS"
	ErrCodeUserUnverified  ErrorCode = "USER_UNVERIFIED"
	ErrCodeUserDeactivated ErrorCode = "USER_DEACTIVATED"
	ErrCodeTokenInvalid   ErrorCode = "TOKEN_INVALID"

	ErrCodeNotGroupAdmin    ErrorCode = "NOT_GROUP_ADMIN"
	ErrCodeNoCapability     ErrorCode = "NO_CAPABILITY"
	ErrCodeNoPostPermission ErrorCode = "NO_POST_PERMISSION"
	ErrCodeGroupPrivate     ErrorCode = "GROUP_PRIVATE"
	ErrCodeNotMember        ErrorCode = "NOT_MEMBER"
	ErrCodeNotRequester     ErrorCode = "NOT_REQUESTER"

	ErrCodeGroupNotFound       ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodePostNotFound        ErrorCode = "POST_NOT_FOUND"
	ErrCodeRoomNotFound        ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"

	ErrCodeRoomUnavailable ErrorCode = "ROOM_UNAVAILABLE"
	ErrCodeDuplicateName   ErrorCode = "DUPLICATE_NAME"
	ErrCodeAlreadyDecided  ErrorCode = "ALREADY_DECIDED"
)

// AppError is the single error currency between services and transport.
// Services return it (or a sentinel wrapping it) and the base handler maps
// it onto an HTTP status without leaking internals.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthenticatedError covers missing or expired sessions.
func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError covers authenticated callers lacking rights. The message
// stays categorical so permission structure is not leaked.
func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrUnauthenticated = NewUnauthenticatedError("authentication required", ErrCodeSessionMissing)
	ErrSessionExpired  = NewUnauthenticatedError("session expired", ErrCodeSessionExpired)
	ErrBadCredentials  = NewUnauthenticatedError("invalid username or password", ErrCodeBadCredentials)
	ErrUserUnverified  = NewUnauthenticatedError("account not verified", ErrCodeUserUnverified)

	ErrNotGroupAdmin    = NewForbiddenError("not an admin of this group", ErrCodeNotGroupAdmin)
	ErrNoCapability     = NewForbiddenError("insufficient privileges", ErrCodeNoCapability)
	ErrNoPostPermission = NewForbiddenError("no posting permission in this group", ErrCodeNoPostPermission)

	ErrGroupNotFound       = NewNotFoundError("group not found", ErrCodeGroupNotFound)
	ErrUserNotFound        = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrPostNotFound        = NewNotFoundError("post not found", ErrCodePostNotFound)
	ErrRoomNotFound        = NewNotFoundError("room not found or inactive", ErrCodeRoomNotFound)
	ErrReservationNotFound = NewNotFoundError("reservation not found", ErrCodeReservationNotFound)

	// ErrRoomUnavailable distinguishes "the slot is taken" from generic
	// invalid input: the request itself was fine.
	ErrRoomUnavailable = NewConflictError("room is not available during the specified time", ErrCodeRoomUnavailable)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	})
}
