// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cookies manages the refresh-token cookie. The refresh token travels
// only in an HTTP-only cookie scoped to the refresh endpoint; the access token
// is returned in JSON bodies and never cookie-persisted.
package cookies

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	// RefreshCookieName is the refresh-token cookie name.
	RefreshCookieName = "refreshToken"
	// RefreshPath scopes the cookie to the refresh endpoint.
	RefreshPath = "/auth/refresh"
)

// ErrNoCookie is returned when the refresh cookie is absent or unreadable.
var ErrNoCookie = errors.New("refresh cookie missing or invalid")

// Manager writes and clears the refresh cookie. The value is HMAC-signed with
// securecookie so a tampered cookie is rejected before JWT verification.
type Manager struct { //nolint:govet // fieldalignment: readability over optimization
	codec      *securecookie.SecureCookie
	secure     bool
	refreshTTL time.Duration
	rememberMe time.Duration
}

// NewManager creates a cookie manager. An empty hashKey generates an
// ephemeral key, which is acceptable only in development: cookies do not
// survive a restart.
func NewManager(hashKey string, secure bool, refreshTTL, rememberTTL time.Duration) (*Manager, error) {
	key := []byte(hashKey)
	if hashKey == "" {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("generating cookie hash key")
		}
	} else if decoded, err := hex.DecodeString(hashKey); err == nil && len(decoded) == 32 {
		key = decoded
	}

	return &Manager{
		codec:      securecookie.New(key, nil),
		secure:     secure,
		refreshTTL: refreshTTL,
		rememberMe: rememberTTL,
	}, nil
}

// SetRefreshCookie attaches the refresh token to the response. Expiry is the
// normal refresh lifetime, or the remember-me lifetime when selected.
func (m *Manager) SetRefreshCookie(w http.ResponseWriter, refreshToken string, rememberMe bool) error {
	encoded, err := m.codec.Encode(RefreshCookieName, refreshToken)
	if err != nil {
		return err
	}

	ttl := m.refreshTTL
	if rememberMe {
		ttl = m.rememberMe
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    encoded,
		Path:     RefreshPath,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ReadRefreshCookie extracts and authenticates the refresh token from the
// request.
func (m *Manager) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", ErrNoCookie
	}
	var value string
	if err := m.codec.Decode(RefreshCookieName, cookie.Value, &value); err != nil {
		return "", ErrNoCookie
	}
	return value, nil
}

// ClearRefreshCookie removes the refresh cookie at its scoped path.
func (m *Manager) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// NewDevHashKey returns a random hex key, handy for local config files.
func NewDevHashKey() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
