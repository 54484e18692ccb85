// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package verification issues the two kinds of short-lived secrets used
// during account verification: typed verification codes (email confirmation,
// password reset) and emailed one-time numeric codes.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
)

const (
	// EmailVerificationTTL keeps confirmation links alive until used.
	EmailVerificationTTL = 365 * 24 * time.Hour
	// PasswordResetTTL bounds the reset-link window.
	PasswordResetTTL = time.Hour
	// OtpTTL bounds the one-time code window.
	OtpTTL = 5 * time.Minute
	// OtpMaxAttempts caps wrong guesses before the code is discarded.
	OtpMaxAttempts = 5

	otpMin = 1000
	otpMax = 9999
)

// Service creates and persists verification secrets.
type Service struct {
	repo *repository.Repository
}

// NewService creates a new verification service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// CreateEmailVerificationCode issues a confirmation code for a user.
func (s *Service) CreateEmailVerificationCode(ctx context.Context, userID string) (*models.VerificationCode, error) {
	return s.repo.CreateVerificationCode(ctx, userID, models.CodeTypeEmailVerification,
		time.Now().UTC().Add(EmailVerificationTTL))
}

// ReplaceEmailVerificationCode deletes any prior confirmation codes for the
// user before issuing a new one, so stale codes do not accumulate.
func (s *Service) ReplaceEmailVerificationCode(ctx context.Context, userID string) (*models.VerificationCode, error) {
	if err := s.repo.DeleteUserVerificationCodes(ctx, userID, models.CodeTypeEmailVerification); err != nil {
		return nil, err
	}
	return s.CreateEmailVerificationCode(ctx, userID)
}

// CreatePasswordResetCode issues a one-hour reset code for a user.
func (s *Service) CreatePasswordResetCode(ctx context.Context, userID string) (*models.VerificationCode, error) {
	return s.repo.CreateVerificationCode(ctx, userID, models.CodeTypePasswordReset,
		time.Now().UTC().Add(PasswordResetTTL))
}

// GenerateOtpCode mints a numeric code in [1000, 9999], stores its bcrypt
// hash keyed by email (replacing any previous code), and returns the
// plaintext for mailing. The plaintext is never persisted.
//
// The 9000-value space is acceptable only because the code is single-use,
// attempt-limited, and expires after five minutes.
func (s *Service) GenerateOtpCode(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	otp := fmt.Sprintf("%d", otpMin+n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing otp: %w", err)
	}

	if err := s.repo.UpsertOtpCode(ctx, email, string(hash), time.Now().UTC().Add(OtpTTL)); err != nil {
		return "", err
	}
	return otp, nil
}

// CheckOtp compares a submitted code against the stored hash.
func CheckOtp(stored *models.OtpCode, submitted string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored.OtpHash), []byte(submitted)) == nil
}
