// Package ecode defines the error taxonomy shared by every layer of the job
// engine: a stable machine-readable kind, a numeric business code and the
// HTTP status the transport binding renders it with.
//
// Error code convention:
//   - 0: success
//   - -401 / -403: identity and authorization failures
//   - -404 / -409 / -422: resource and request failures
//   - -500 / -503: server failures
package ecode

import "net/http"

// Kind is the stable, machine-readable class of an error.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindTransient    Kind = "transient"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Business codes.
const (
	OK                 = 0
	Unauthorized       = -401
	AccessDenied       = -403
	NothingFound       = -404
	Conflict           = -409
	ParamErr           = -422
	ServerErr          = -500
	ServiceUnavailable = -503
)

var kindCodes = map[Kind]int{
	KindNotFound:     NothingFound,
	KindForbidden:    AccessDenied,
	KindConflict:     Conflict,
	KindValidation:   ParamErr,
	KindTransient:    ServiceUnavailable,
	KindUnauthorized: Unauthorized,
	KindInternal:     ServerErr,
}

var codeText = map[int]string{
	OK:                 "ok",
	Unauthorized:       "Authentication required",
	AccessDenied:       "Access denied",
	NothingFound:       "Resource not found",
	Conflict:           "Resource conflict",
	ParamErr:           "Invalid parameters",
	ServerErr:          "Internal server error",
	ServiceUnavailable: "Service temporarily unavailable",
}

var codeStatus = map[int]int{
	OK:                 http.StatusOK,
	Unauthorized:       http.StatusUnauthorized,
	AccessDenied:       http.StatusForbidden,
	NothingFound:       http.StatusNotFound,
	Conflict:           http.StatusConflict,
	ParamErr:           http.StatusUnprocessableEntity,
	ServerErr:          http.StatusInternalServerError,
	ServiceUnavailable: http.StatusServiceUnavailable,
}

// Code returns the business code of a kind.
func (k Kind) Code() int {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return ServerErr
}

// Text returns the default message for a business code.
func Text(code int) string {
	if t, ok := codeText[code]; ok {
		return t
	}
	return codeText[ServerErr]
}

// ToHTTPStatus maps a business code to its HTTP status.
func ToHTTPStatus(code int) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
