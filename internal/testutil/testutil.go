// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/atelier-api/internal/database"
	"codeberg.org/oliverandrich/atelier-api/internal/metrics"
	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/token"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), username, email, string(hash))
	require.NoError(t, err)
	return user
}

// NewConfirmedUser creates a test user whose email is already confirmed.
func NewConfirmedUser(t *testing.T, repo *repository.Repository, username, email, password string) *models.User {
	t.Helper()
	user := NewTestUser(t, repo, username, email, password)
	require.NoError(t, repo.ConfirmUserEmail(context.Background(), user.ID))
	user.IsEmailConfirmed = true
	return user
}

// NewTokenManager creates a token manager with short test lifetimes.
func NewTokenManager(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager(token.Config{
		AccessSecret:       []byte("test-access-secret"),
		RefreshSecret:      []byte("test-refresh-secret"),
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         7 * 24 * time.Hour,
		RememberRefreshTTL: 30 * 24 * time.Hour,
		Issuer:             "atelier-test",
	})
	require.NoError(t, err)
	return m
}

// NewCollector creates a metrics collector on a private registry.
func NewCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	return metrics.NewCollector(prometheus.NewRegistry())
}

// SentMail records one delivery made through FakeSender.
type SentMail struct {
	To   string
	Kind string // "link", "otp", "reset"
	Body string // the link or code
}

// FakeSender implements email.Sender and records deliveries in memory.
type FakeSender struct {
	mu   sync.Mutex
	Fail error // when set, every send returns this error

	Sent []SentMail
}

func (f *FakeSender) SendVerificationEmail(_ context.Context, to, link string) error {
	return f.record(SentMail{To: to, Kind: "link", Body: link})
}

func (f *FakeSender) SendVerificationOtp(_ context.Context, to, code string) error {
	return f.record(SentMail{To: to, Kind: "otp", Body: code})
}

func (f *FakeSender) SendResetPasswordURL(_ context.Context, to, link string) error {
	return f.record(SentMail{To: to, Kind: "reset", Body: link})
}

func (f *FakeSender) record(m SentMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return f.Fail
	}
	f.Sent = append(f.Sent, m)
	return nil
}

// Last returns the most recent delivery.
func (f *FakeSender) Last(t *testing.T) SentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.Sent)
	return f.Sent[len(f.Sent)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
