// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrLimitExceeded   = errors.New("limit exceeded")
	ErrExternalService = errors.New("external service error")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

// DomainError is a named business-rule failure. Kind is one of the core
// sentinels and decides the HTTP status; Code and Message go to the client.
type DomainError struct {
	Kind    error
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// Is matches any DomainError carrying the same code, so messages can vary.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func NewDomainError(kind error, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// MapError translates the error taxonomy into an AppError for handlers that
// don't need resource-specific messages.
func MapError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return NewAppError(err, domainErr.Message, statusForKind(domainErr.Kind), domainErr.Code)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(err, "resource not found", http.StatusNotFound, "NOT_FOUND")
	case errors.Is(err, ErrDuplicateKey):
		return NewAppError(err, "resource already exists", http.StatusConflict, "DUPLICATE")
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(err, "invalid input", http.StatusUnprocessableEntity, "VALIDATION_ERROR")
	case errors.Is(err, ErrLimitExceeded):
		return NewAppError(err, "limit exceeded", http.StatusConflict, "LIMIT_EXCEEDED")
	case errors.Is(err, ErrExternalService):
		return NewAppError(err, "upstream service unavailable", http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	}

	return NewAppError(err, "internal server error", http.StatusInternalServerError, "INTERNAL_ERROR")
}

func statusForKind(kind error) int {
	switch kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrDuplicateKey, ErrLimitExceeded:
		return http.StatusConflict
	case ErrInvalidInput:
		return http.StatusUnprocessableEntity
	case ErrExternalService:
		return http.StatusBadGateway
	case ErrForbidden:
		return http.StatusForbidden
	case ErrUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
