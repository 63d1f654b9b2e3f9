// Package apperr описывает ошибки, которые сервисы отдают клиенту:
// машинный код, заголовок, HTTP-статус. Причина (Cause) только для логов.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindTokenMalformed        Kind = "TokenMalformed"
	KindTokenSignatureInvalid Kind = "TokenSignatureInvalid"
	KindTokenExpired          Kind = "TokenExpired"
	KindInvalidCredentials    Kind = "InvalidCredentials"
	KindResourceNotFound      Kind = "ResourceNotFound"
	KindDuplicateResource     Kind = "DuplicateResource"
	KindBusinessRule          Kind = "BusinessRuleViolation"
	KindValidation            Kind = "Validation"
	KindUnauthorized          Kind = "Unauthorized"
	KindForbidden             Kind = "Forbidden"
	KindRateLimited           Kind = "RateLimited"
	KindUnavailable           Kind = "Unavailable"
	KindBadGateway            Kind = "BadGateway"
	KindInternal              Kind = "Internal"
)

type AppError struct {
	Kind    Kind
	Code    string
	Title   string
	Detail  string
	Status  int
	Details map[string]string
	Cause   error
}

func (e *AppError) Error() string { return e.Detail }

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause возвращает копию с причиной для логов.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// TokenInvalid общий ответ для повреждённого и подделанного токена.
func TokenInvalid(detail string) *AppError {
	return &AppError{
		Kind:   KindTokenMalformed,
		Code:   "INVALID_TOKEN",
		Title:  "Invalid Token",
		Detail: detail,
		Status: http.StatusUnauthorized,
	}
}

func TokenSignatureInvalid(detail string) *AppError {
	appErr := TokenInvalid(detail)
	appErr.Kind = KindTokenSignatureInvalid
	return appErr
}

func TokenExpired(detail string) *AppError {
	return &AppError{
		Kind:   KindTokenExpired,
		Code:   "TOKEN_EXPIRED",
		Title:  "Token Expired",
		Detail: detail,
		Status: http.StatusUnauthorized,
	}
}

func InvalidCredentials(detail string) *AppError {
	return &AppError{
		Kind:   KindInvalidCredentials,
		Code:   "INVALID_CREDENTIALS",
		Title:  "Authentication Failed",
		Detail: detail,
		Status: http.StatusUnauthorized,
	}
}

func ResourceNotFound(detail string) *AppError {
	return &AppError{
		Kind:   KindResourceNotFound,
		Code:   "RESOURCE_NOT_FOUND",
		Title:  "Resource Not Found",
		Detail: detail,
		Status: http.StatusNotFound,
	}
}

func DuplicateResource(detail string) *AppError {
	return &AppError{
		Kind:   KindDuplicateResource,
		Code:   "DUPLICATE_RESOURCE",
		Title:  "Duplicate Resource",
		Detail: detail,
		Status: http.StatusConflict,
	}
}

// BusinessRule нарушение бизнес-правила, code задаёт вызывающий (ACCOUNT_NOT_ACTIVE, INVALID_ROLE).
func BusinessRule(code string, detail string) *AppError {
	return &AppError{
		Kind:   KindBusinessRule,
		Code:   code,
		Title:  "Business Rule Violation",
		Detail: detail,
		Status: http.StatusBadRequest,
	}
}

func Validation(detail string, details map[string]string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_FAILED",
		Title:   "Validation Failed",
		Detail:  detail,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

func Unauthorized(detail string) *AppError {
	return &AppError{
		Kind:   KindUnauthorized,
		Code:   "UNAUTHORIZED",
		Title:  "Unauthorized",
		Detail: detail,
		Status: http.StatusUnauthorized,
	}
}

func Forbidden(detail string) *AppError {
	return &AppError{
		Kind:   KindForbidden,
		Code:   "FORBIDDEN",
		Title:  "Forbidden",
		Detail: detail,
		Status: http.StatusForbidden,
	}
}

func RateLimited() *AppError {
	return &AppError{
		Kind:   KindRateLimited,
		Code:   "RATE_LIMITED",
		Title:  "Too Many Requests",
		Detail: "Rate limit exceeded",
		Status: http.StatusTooManyRequests,
	}
}

// Unavailable временная ошибка хранилища: клиенту стоит повторить запрос,
// а не проходить аутентификацию заново.
func Unavailable(detail string, cause error) *AppError {
	return &AppError{
		Kind:   KindUnavailable,
		Code:   "SERVICE_UNAVAILABLE",
		Title:  "Service Unavailable",
		Detail: detail,
		Status: http.StatusServiceUnavailable,
		Cause:  cause,
	}
}

func BadGateway(cause error) *AppError {
	return &AppError{
		Kind:   KindBadGateway,
		Code:   "BAD_GATEWAY",
		Title:  "Bad Gateway",
		Detail: "Upstream service is unavailable",
		Status: http.StatusBadGateway,
		Cause:  cause,
	}
}

func Internal(cause error) *AppError {
	return &AppError{
		Kind:   KindInternal,
		Code:   "INTERNAL_SERVER_ERROR",
		Title:  "Internal Server Error",
		Detail: "An unexpected error occurred. Please contact support if the problem persists.",
		Status: http.StatusInternalServerError,
		Cause:  cause,
	}
}

// As достаёт *AppError из цепочки, иначе nil.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsKind(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}
