// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token signs and verifies the access/refresh JWT pair. Access and
// refresh tokens use distinct secrets, so the verify methods are separate and
// there is no defaulted secret to call with by accident.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Expiry is distinguished from every other defect so
// callers can branch without string matching.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Config holds the secrets and lifetimes for both token profiles.
type Config struct { //nolint:govet // fieldalignment not critical for config structs
	AccessSecret       []byte
	RefreshSecret      []byte
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RememberRefreshTTL time.Duration
	Issuer             string
}

// Claims is the payload carried by both token kinds. JTI is set only on
// refresh tokens.
type Claims struct {
	UserID string `json:"uid"`
	JTI    string `json:"jti,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies tokens. Safe for concurrent use.
type Manager struct {
	cfg Config
}

// NewManager validates the configuration and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RememberRefreshTTL <= cfg.RefreshTTL {
		return nil, errors.New("remember-me TTL must exceed the refresh TTL")
	}
	return &Manager{cfg: cfg}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.cfg.AccessTTL
}

// RefreshTTL returns the refresh lifetime for the given remember-me choice.
func (m *Manager) RefreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return m.cfg.RememberRefreshTTL
	}
	return m.cfg.RefreshTTL
}

// SignAccess issues a short-lived access token for a user.
func (m *Manager) SignAccess(userID string) (string, error) {
	return m.sign(userID, "", m.cfg.AccessTTL, m.cfg.AccessSecret)
}

// SignRefresh issues a refresh token carrying the given jti. The remember-me
// profile uses the long lifetime.
func (m *Manager) SignRefresh(userID, jti string, rememberMe bool) (string, error) {
	return m.sign(userID, jti, m.RefreshTTL(rememberMe), m.cfg.RefreshSecret)
}

// VerifyAccess verifies a token against the access secret.
func (m *Manager) VerifyAccess(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.cfg.AccessSecret)
}

// VerifyRefresh verifies a token against the refresh secret.
func (m *Manager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.cfg.RefreshSecret)
}

func (m *Manager) sign(userID, jti string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (m *Manager) verify(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.cfg.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
