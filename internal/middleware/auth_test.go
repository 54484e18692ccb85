// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/middleware"
	"codeberg.org/oliverandrich/atelier-api/internal/testutil"
)

func TestRequireAuth(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)
	user := testutil.NewConfirmedUser(t, repo, "alice", "alice@example.com", "pw")

	signed, err := tokens.SignAccess(user.ID)
	require.NoError(t, err)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

	var seen string
	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error {
		seen = middleware.UserFromContext(c).ID
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, user.ID, seen)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)

	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error { return nil })
	err := handler(c)

	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")

	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error { return nil })
	err := handler(c)

	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer garbage")

	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error { return nil })
	err := handler(c)

	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)
	user := testutil.NewConfirmedUser(t, repo, "alice", "alice@example.com", "pw")

	// A refresh token must not grant API access.
	signed, err := tokens.SignRefresh(user.ID, "jti-1", false)
	require.NoError(t, err)

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error { return nil })
	err = handler(c)

	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenManager(t)
	user := testutil.NewConfirmedUser(t, repo, "alice", "alice@example.com", "pw")

	signed, err := tokens.SignAccess(user.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteUser(context.Background(), user.ID))

	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/auth/me", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+signed)

	handler := middleware.RequireAuth(tokens, repo)(func(c echo.Context) error { return nil })
	err = handler(c)

	assert.True(t, apperror.Is(err, apperror.KindTokenInvalid))
}

func TestUserFromContext_Unset(t *testing.T) {
	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodGet, "/", nil)

	assert.Nil(t, middleware.UserFromContext(c))
}
