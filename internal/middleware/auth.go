// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware contains the echo middleware protecting the API.
package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/token"
)

const userContextKey = "auth.user"

// RequireAuth validates the bearer access token and loads the user into the
// echo context. The token payload carries only the user id; the user record
// is re-read so a deleted account is rejected immediately.
func RequireAuth(tokens *token.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apperror.New(apperror.KindTokenInvalid, "missing authorization header")
			}

			scheme, value, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" {
				return apperror.New(apperror.KindTokenInvalid, "authorization header must use the bearer scheme")
			}

			claims, err := tokens.VerifyAccess(value)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					return apperror.New(apperror.KindTokenExpired, "access token expired")
				}
				return apperror.New(apperror.KindTokenInvalid, "invalid access token")
			}

			user, err := repo.GetUserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperror.New(apperror.KindTokenInvalid, "invalid access token")
				}
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user, or nil outside RequireAuth.
func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}
