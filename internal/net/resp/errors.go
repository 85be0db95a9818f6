package resp

import (
	"net/http"

	"github.com/skillconnect/jobcore/internal/ecode"
)

// UnAuthorized indicates that the request carries no valid identity.
func UnAuthorized(message string, errs ...any) *Exception {
	return newException(ecode.KindUnauthorized, message, errs...)
}

// BadRequest indicates a request that could not be decoded.
func BadRequest(message string, errs ...any) *Exception {
	return newException(ecode.KindValidation, message, errs...)
}

// NotFound indicates that the requested resource is not found.
func NotFound(message string, errs ...any) *Exception {
	return newException(ecode.KindNotFound, message, errs...)
}

// Forbidden indicates that the caller may not perform the action.
func Forbidden(message string, errs ...any) *Exception {
	return newException(ecode.KindForbidden, message, errs...)
}

// Conflict indicates a state conflict.
func Conflict(message string, errs ...any) *Exception {
	return newException(ecode.KindConflict, message, errs...)
}

// TooManyRequests indicates that a rate limit was hit.
func TooManyRequests(message string) *Exception {
	ex := newException(ecode.KindTransient, message)
	ex.Status = http.StatusTooManyRequests
	return ex
}

// ServiceUnavailable indicates a transient dependency failure.
func ServiceUnavailable(message string, errs ...any) *Exception {
	return newException(ecode.KindTransient, message, errs...)
}

// InternalServer indicates an internal server error.
func InternalServer(message string, errs ...any) *Exception {
	return newException(ecode.KindInternal, message, errs...)
}
