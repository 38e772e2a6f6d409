package oauthmodel

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the OAuth2 "error" value reported to clients.
type ErrorCode string

const (
	InvalidRequestCode       ErrorCode = "invalid_request"
	InvalidGrantCode         ErrorCode = "invalid_grant"
	InvalidClientCode        ErrorCode = "invalid_client"
	InvalidScopeCode         ErrorCode = "invalid_scope"
	AccessDeniedCode         ErrorCode = "access_denied"
	UnsupportedGrantTypeCode ErrorCode = "unsupported_grant_type"
	ServerErrorCode          ErrorCode = "server_error"
	TokenNotFoundCode        ErrorCode = "token_not_found"
	TokenExpiredCode         ErrorCode = "token_expired"
)

// Error is an OAuth2 protocol error. Two errors are the same kind when their codes match,
// so errors.Is(err, ErrInvalidGrant) holds for any invalid_grant regardless of description.
type Error struct {
	Code        ErrorCode
	Description string
	Status      int
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Kinds raised by the token engine.
var (
	ErrInvalidRequest          = &Error{Code: InvalidRequestCode, Status: http.StatusBadRequest}
	ErrInvalidGrant            = &Error{Code: InvalidGrantCode, Status: http.StatusBadRequest}
	ErrInvalidClient           = &Error{Code: InvalidClientCode, Status: http.StatusUnauthorized}
	ErrInvalidScope            = &Error{Code: InvalidScopeCode, Status: http.StatusBadRequest}
	ErrUserDeniedAuthorization = &Error{Code: AccessDeniedCode, Status: http.StatusForbidden}
	ErrUnsupportedGrantType    = &Error{Code: UnsupportedGrantTypeCode, Status: http.StatusBadRequest}
	ErrServerError             = &Error{Code: ServerErrorCode, Status: http.StatusInternalServerError}
	ErrTokenNotFound           = &Error{Code: TokenNotFoundCode, Status: http.StatusNotFound}
	ErrTokenExpired            = &Error{Code: TokenExpiredCode, Status: http.StatusGone}
)

func newError(kind *Error, description string) *Error {
	return &Error{Code: kind.Code, Status: kind.Status, Description: description}
}

func InvalidRequest(description string) error { return newError(ErrInvalidRequest, description) }

func InvalidGrant(description string) error { return newError(ErrInvalidGrant, description) }

func InvalidClient(description string) error { return newError(ErrInvalidClient, description) }

func InvalidScope(description string) error { return newError(ErrInvalidScope, description) }

func UserDeniedAuthorization(description string) error {
	return newError(ErrUserDeniedAuthorization, description)
}

func UnsupportedGrantType(description string) error {
	return newError(ErrUnsupportedGrantType, description)
}

func TokenNotFound(description string) error { return newError(ErrTokenNotFound, description) }

func TokenExpired(description string) error { return newError(ErrTokenExpired, description) }

// StatusProvider is implemented by errors that know their own HTTP status,
// such as validation failures.
type StatusProvider interface {
	HTTPStatus() int
}

// StatusFor maps an error to the status an HTTP layer should answer with.
// Unknown errors are server errors.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var oauthErr *Error
	if errors.As(err, &oauthErr) {
		return oauthErr.Status
	}
	var sp StatusProvider
	if errors.As(err, &sp) {
		return sp.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// CodeFor returns the OAuth2 error code for err, server_error when unknown.
func CodeFor(err error) ErrorCode {
	var oauthErr *Error
	if errors.As(err, &oauthErr) {
		return oauthErr.Code
	}
	var sp StatusProvider
	if errors.As(err, &sp) && sp.HTTPStatus() == http.StatusBadRequest {
		return InvalidRequestCode
	}
	return ServerErrorCode
}
