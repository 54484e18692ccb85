// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
)

// errorResponse is the single error body shape of the API.
type errorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// httpErrorHandler translates domain errors into the API's error body.
// Anything without a known kind becomes an opaque 500; the underlying error
// goes to the log, not the client.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status = http.StatusInternalServerError
		body   = errorResponse{Code: string(apperror.KindInternal), Message: "internal server error"}
	)

	var appErr *apperror.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.HTTPStatus()
		body = errorResponse{Code: string(appErr.Kind), Message: appErr.Message}
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
		body = errorResponse{Code: string(apperror.KindNotFound), Message: "not found"}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			body = errorResponse{Code: string(apperror.KindValidation), Message: msg}
		} else {
			body = errorResponse{Code: string(apperror.KindValidation), Message: http.StatusText(status)}
		}
	default:
		slog.Error("unhandled error", "error", err, "uri", c.Request().RequestURI)
	}

	body.Status = status
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
