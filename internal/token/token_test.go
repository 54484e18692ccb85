// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/atelier-api/internal/token"
)

func newManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager(token.Config{
		AccessSecret:       []byte("access-secret"),
		RefreshSecret:      []byte("refresh-secret"),
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		RememberRefreshTTL: 30 * 24 * time.Hour,
		Issuer:             "test",
	})
	require.NoError(t, err)
	return m
}

func TestNewManager_RejectsMissingSecrets(t *testing.T) {
	_, err := token.NewManager(token.Config{
		AccessTTL:          time.Minute,
		RefreshTTL:         time.Hour,
		RememberRefreshTTL: 2 * time.Hour,
	})
	assert.Error(t, err)
}

func TestNewManager_RejectsSharedSecret(t *testing.T) {
	_, err := token.NewManager(token.Config{
		AccessSecret:       []byte("same"),
		RefreshSecret:      []byte("same"),
		AccessTTL:          time.Minute,
		RefreshTTL:         time.Hour,
		RememberRefreshTTL: 2 * time.Hour,
	})
	assert.Error(t, err)
}

func TestNewManager_RejectsShortRememberTTL(t *testing.T) {
	_, err := token.NewManager(token.Config{
		AccessSecret:       []byte("a"),
		RefreshSecret:      []byte("b"),
		AccessTTL:          time.Minute,
		RefreshTTL:         time.Hour,
		RememberRefreshTTL: time.Hour,
	})
	assert.Error(t, err)
}

func TestAccessRoundTrip(t *testing.T) {
	m := newManager(t)

	signed, err := m.SignAccess("user-1")
	require.NoError(t, err)

	claims, err := m.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.JTI)
}

func TestRefreshRoundTrip(t *testing.T) {
	m := newManager(t)

	signed, err := m.SignRefresh("user-1", "jti-1", false)
	require.NoError(t, err)

	claims, err := m.VerifyRefresh(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jti-1", claims.JTI)
}

func TestSecretsAreIsolated(t *testing.T) {
	m := newManager(t)

	access, err := m.SignAccess("user-1")
	require.NoError(t, err)
	refresh, err := m.SignRefresh("user-1", "jti-1", false)
	require.NoError(t, err)

	// A token signed for one profile never verifies under the other.
	_, err = m.VerifyRefresh(access)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
	_, err = m.VerifyAccess(refresh)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestVerifyAccess_Garbage(t *testing.T) {
	m := newManager(t)

	_, err := m.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestVerifyAccess_Expired(t *testing.T) {
	m, err := token.NewManager(token.Config{
		AccessSecret:       []byte("access-secret"),
		RefreshSecret:      []byte("refresh-secret"),
		AccessTTL:          time.Nanosecond,
		RefreshTTL:         time.Hour,
		RememberRefreshTTL: 2 * time.Hour,
	})
	require.NoError(t, err)

	signed, err := m.SignAccess("user-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = m.VerifyAccess(signed)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerify_WrongIssuer(t *testing.T) {
	issuerA := newManager(t)

	other, err := token.NewManager(token.Config{
		AccessSecret:       []byte("access-secret"),
		RefreshSecret:      []byte("refresh-secret"),
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		RememberRefreshTTL: 30 * 24 * time.Hour,
		Issuer:             "someone-else",
	})
	require.NoError(t, err)

	signed, err := other.SignAccess("user-1")
	require.NoError(t, err)

	_, err = issuerA.VerifyAccess(signed)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestRefreshTTL(t *testing.T) {
	m := newManager(t)

	assert.Equal(t, 7*24*time.Hour, m.RefreshTTL(false))
	assert.Equal(t, 30*24*time.Hour, m.RefreshTTL(true))
	assert.Greater(t, m.RefreshTTL(true), m.RefreshTTL(false))
}
