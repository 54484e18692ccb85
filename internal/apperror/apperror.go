// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperror defines the closed set of error kinds the API surfaces.
// Every kind maps to exactly one HTTP status; the mapping is applied once, in
// the server's error handler.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a failure class.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailNotVerified   Kind = "email_not_verified"
	KindCodeExpired        Kind = "code_expired"
	KindCodeInvalid        Kind = "code_invalid"
	KindTokenExpired       Kind = "token_expired"
	KindTokenInvalid       Kind = "token_invalid"
	KindRateLimited        Kind = "rate_limited"
	KindNotFound           Kind = "not_found"
	KindAlreadyExists      Kind = "already_exists"
	KindValidation         Kind = "validation"
	KindEmailDelivery      Kind = "email_delivery"
	KindInternal           Kind = "internal"
)

// HTTPStatus returns the status code for a kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidCredentials, KindTokenExpired, KindTokenInvalid:
		return http.StatusUnauthorized
	case KindEmailNotVerified:
		return http.StatusForbidden
	case KindCodeExpired, KindCodeInvalid, KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind plus a user-facing message. Messages must not contain
// secrets; they are returned verbatim in the response body.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
