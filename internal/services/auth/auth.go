// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth orchestrates the session and verification lifecycle:
// registration, two-step email verification, login, refresh rotation, logout
// and both password-reset flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/metrics"
	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/ratelimit"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/services/email"
	"codeberg.org/oliverandrich/atelier-api/internal/services/verification"
	"codeberg.org/oliverandrich/atelier-api/internal/token"
)

// PasswordResetCooldown is the minimum spacing between forgot-password
// requests for one user.
const PasswordResetCooldown = 5 * time.Minute

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service wires the credential store, the verification stores, the token
// manager and the email sender into the authentication state machine.
type Service struct { //nolint:govet // fieldalignment: readability over optimization
	repo         *repository.Repository
	verification *verification.Service
	sender       email.Sender
	tokens       *token.Manager
	metrics      *metrics.Collector
	loginLimiter *ratelimit.KeyedLimiter
	baseURL      string
}

// NewService creates the auth service. All dependencies are constructed once
// at process start and injected.
func NewService(
	repo *repository.Repository,
	verificationSvc *verification.Service,
	sender email.Sender,
	tokens *token.Manager,
	collector *metrics.Collector,
	baseURL string,
) *Service {
	return &Service{
		repo:         repo,
		verification: verificationSvc,
		sender:       sender,
		tokens:       tokens,
		metrics:      collector,
		loginLimiter: ratelimit.NewKeyedLimiter(rate.Every(6*time.Second), 10),
		baseURL:      baseURL,
	}
}

// TokenPair is an issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Result is the outcome of an operation that establishes a session.
type Result struct {
	User *models.User
	Pair TokenPair
}

// RegisterParams holds the parameters for user registration.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register creates a new unconfirmed account and emails the verification
// link. A failed email delivery fails the whole registration.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	// The unique index on email is the authority on duplicates, so a
	// concurrent registration cannot slip past a pre-check.
	user, err := s.repo.CreateUser(ctx, params.Username, params.Email, string(passwordHash))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.New(apperror.KindAlreadyExists, "a user with that email already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	code, err := s.verification.CreateEmailVerificationCode(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("creating verification code: %w", err)
	}

	if err := s.sender.SendVerificationEmail(ctx, user.Email, s.verifyLink(code.ID)); err != nil {
		return nil, err
	}

	s.metrics.RecordRegistration()
	s.metrics.RecordEmailSent("verification_link")
	slog.Info("register_success", "user_id", user.ID)
	return user, nil
}

// FirstStepVerification redeems an emailed verification-code id: it mints and
// mails an OTP for the owning user and consumes the code. The caller is a
// redirect handler, so misses surface as CodeInvalid rather than panics.
func (s *Service) FirstStepVerification(ctx context.Context, verificationID string) (*models.User, error) {
	code, err := s.repo.GetVerificationCode(ctx, verificationID, models.CodeTypeEmailVerification, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindCodeInvalid, "invalid or expired verification code")
		}
		return nil, fmt.Errorf("loading verification code: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, code.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	otp, err := s.verification.GenerateOtpCode(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generating otp: %w", err)
	}

	if err := s.sender.SendVerificationOtp(ctx, user.Email, otp); err != nil {
		return nil, err
	}

	if err := s.repo.DeleteVerificationCode(ctx, code.ID); err != nil {
		return nil, fmt.Errorf("consuming verification code: %w", err)
	}

	s.metrics.RecordEmailSent("otp")
	slog.Info("first_step_verified", "user_id", user.ID)
	return user, nil
}

// SecondStepVerification checks the submitted OTP, confirms the email and
// establishes a session. Expired and wrong codes fail distinguishably; wrong
// guesses are counted and the code is discarded after too many.
func (s *Service) SecondStepVerification(ctx context.Context, userEmail, otp string, rememberMe bool) (*Result, error) {
	stored, err := s.repo.GetOtpCode(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindCodeExpired, "no pending verification code for this email")
		}
		return nil, fmt.Errorf("loading otp: %w", err)
	}

	now := time.Now().UTC()
	if stored.Expired(now) {
		_ = s.repo.DeleteOtpCode(ctx, userEmail)
		return nil, apperror.New(apperror.KindCodeExpired, "the verification code has expired")
	}

	if !verification.CheckOtp(stored, otp) {
		attempts, incErr := s.repo.IncrementOtpAttempts(ctx, userEmail)
		if incErr == nil && attempts >= verification.OtpMaxAttempts {
			_ = s.repo.DeleteOtpCode(ctx, userEmail)
			return nil, apperror.New(apperror.KindRateLimited, "too many wrong codes, request a new one")
		}
		return nil, apperror.New(apperror.KindCodeInvalid, "wrong verification code")
	}

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if err := s.repo.ConfirmUserEmail(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("confirming email: %w", err)
	}
	user.IsEmailConfirmed = true

	result, err := s.issueTokens(ctx, user, rememberMe)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteOtpCode(ctx, userEmail); err != nil {
		return nil, fmt.Errorf("consuming otp: %w", err)
	}

	s.metrics.RecordVerification()
	slog.Info("second_step_verified", "user_id", user.ID)
	return result, nil
}

// ResendVerification reissues the email-confirmation link for an unconfirmed
// account. Any previous confirmation code is discarded first.
func (s *Service) ResendVerification(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(apperror.KindNotFound, "user not found")
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if user.IsEmailConfirmed {
		return apperror.New(apperror.KindValidation, "email is already verified")
	}

	code, err := s.verification.ReplaceEmailVerificationCode(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("reissuing verification code: %w", err)
	}
	if err := s.sender.SendVerificationEmail(ctx, user.Email, s.verifyLink(code.ID)); err != nil {
		return err
	}

	s.metrics.RecordEmailSent("verification_link")
	slog.Info("verification_resent", "user_id", user.ID)
	return nil
}

// Login authenticates a confirmed user. Unknown email and wrong password are
// indistinguishable to the caller; an unconfirmed user gets a fresh
// verification email instead of a session.
func (s *Service) Login(ctx context.Context, userEmail, password string, rememberMe bool) (*Result, error) {
	if !s.loginLimiter.Allow(userEmail) {
		s.metrics.RecordLogin("rate_limited")
		return nil, apperror.New(apperror.KindRateLimited, "too many login attempts, try again later")
	}

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison so an
			// unknown email is not observable by timing.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.metrics.RecordLogin("failure")
			slog.Warn("login_failed", "reason", "user_not_found")
			return nil, apperror.New(apperror.KindInvalidCredentials, "wrong email or password")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if !user.IsEmailConfirmed {
		code, codeErr := s.verification.ReplaceEmailVerificationCode(ctx, user.ID)
		if codeErr != nil {
			return nil, fmt.Errorf("reissuing verification code: %w", codeErr)
		}
		if sendErr := s.sender.SendVerificationEmail(ctx, user.Email, s.verifyLink(code.ID)); sendErr != nil {
			return nil, sendErr
		}
		s.metrics.RecordEmailSent("verification_link")
		s.metrics.RecordLogin("unverified")
		return nil, apperror.New(apperror.KindEmailNotVerified,
			"email not verified yet, a new verification email has been sent")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLogin("failure")
		slog.Warn("login_failed", "user_id", user.ID, "reason", "wrong_password")
		return nil, apperror.New(apperror.KindInvalidCredentials, "wrong email or password")
	}

	result, err := s.issueTokens(ctx, user, rememberMe)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("success")
	slog.Info("login_success", "user_id", user.ID)
	return result, nil
}

// Refresh rotates a refresh token: the presented jti is revoked and a new
// pair is issued. An unknown or already-revoked jti is treated as invalid,
// which also catches replay of a rotated-out token.
func (s *Service) Refresh(ctx context.Context, refreshToken string, rememberMe bool) (*Result, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordRefresh("invalid")
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, apperror.New(apperror.KindTokenExpired, "refresh token expired")
		}
		return nil, apperror.New(apperror.KindTokenInvalid, "invalid refresh token")
	}

	record, err := s.repo.GetRefreshToken(ctx, claims.JTI)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordRefresh("invalid")
			return nil, apperror.New(apperror.KindTokenInvalid, "invalid refresh token")
		}
		return nil, fmt.Errorf("loading refresh record: %w", err)
	}
	if !record.Usable(time.Now().UTC()) {
		// A revoked jti showing up again means the token was replayed
		// after rotation. Cut off the whole family.
		_ = s.repo.RevokeUserRefreshTokens(ctx, record.UserID)
		s.metrics.RecordRefresh("reuse_detected")
		slog.Warn("refresh_reuse_detected", "user_id", record.UserID)
		return nil, apperror.New(apperror.KindTokenInvalid, "invalid refresh token")
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordRefresh("invalid")
			return nil, apperror.New(apperror.KindTokenInvalid, "invalid refresh token")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	if err := s.repo.RevokeRefreshToken(ctx, claims.JTI); err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}

	result, err := s.issueTokens(ctx, user, rememberMe)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRefresh("success")
	return result, nil
}

// Logout revokes the presented refresh token. A missing or invalid token is
// not an error: the session is gone either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return
	}
	if err := s.repo.RevokeRefreshToken(ctx, claims.JTI); err != nil {
		slog.Warn("logout_revoke_failed", "error", err)
	}
}

// ResetPassword changes the password of an authenticated user.
func (s *Service) ResetPassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return apperror.New(apperror.KindValidation, "new password and confirmation do not match")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(apperror.KindNotFound, "user not found")
		}
		return fmt.Errorf("loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperror.New(apperror.KindInvalidCredentials, "wrong current password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.metrics.RecordPasswordReset()
	slog.Info("password_changed", "user_id", user.ID)
	return nil
}

// SendPasswordResetURL mails a one-hour reset link. At most one reset code is
// issued per user per cooldown window.
func (s *Service) SendPasswordResetURL(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(apperror.KindNotFound, "user not found")
		}
		return fmt.Errorf("loading user: %w", err)
	}

	since := time.Now().UTC().Add(-PasswordResetCooldown)
	recent, err := s.repo.CountRecentVerificationCodes(ctx, user.ID, models.CodeTypePasswordReset, since)
	if err != nil {
		return fmt.Errorf("counting recent reset codes: %w", err)
	}
	if recent > 0 {
		return apperror.New(apperror.KindRateLimited, "a reset link was sent recently, try again later")
	}

	code, err := s.verification.CreatePasswordResetCode(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("creating reset code: %w", err)
	}

	link := fmt.Sprintf("%s/password/reset?code=%s&exp=%d", s.baseURL, code.ID, code.ExpiresAt.Unix())
	if err := s.sender.SendResetPasswordURL(ctx, user.Email, link); err != nil {
		return err
	}

	s.metrics.RecordEmailSent("password_reset")
	slog.Info("password_reset_requested", "user_id", user.ID)
	return nil
}

// ResetForgottenPassword redeems a reset code and sets a new password. All
// outstanding refresh tokens for the user are revoked so every session must
// log in again. Returns the owning user id.
func (s *Service) ResetForgottenPassword(ctx context.Context, codeID, newPassword string) (string, error) {
	code, err := s.repo.GetVerificationCode(ctx, codeID, models.CodeTypePasswordReset, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperror.New(apperror.KindCodeInvalid, "invalid or expired reset code")
		}
		return "", fmt.Errorf("loading reset code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, code.UserID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperror.New(apperror.KindNotFound, "user not found")
		}
		return "", fmt.Errorf("updating password: %w", err)
	}

	if err := s.repo.DeleteVerificationCode(ctx, code.ID); err != nil {
		return "", fmt.Errorf("consuming reset code: %w", err)
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, code.UserID); err != nil {
		return "", fmt.Errorf("revoking sessions: %w", err)
	}

	s.metrics.RecordPasswordReset()
	slog.Info("forgotten_password_reset", "user_id", code.UserID)
	return code.UserID, nil
}

// issueTokens signs an access/refresh pair and records the refresh jti.
func (s *Service) issueTokens(ctx context.Context, user *models.User, rememberMe bool) (*Result, error) {
	jti := uuid.NewString()

	accessToken, err := s.tokens.SignAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err := s.tokens.SignRefresh(user.ID, jti, rememberMe)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.tokens.RefreshTTL(rememberMe))
	if err := s.repo.CreateRefreshToken(ctx, jti, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("recording refresh token: %w", err)
	}

	return &Result{
		User: user,
		Pair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
	}, nil
}

func (s *Service) verifyLink(codeID string) string {
	return fmt.Sprintf("%s/auth/email/verify/%s", s.baseURL, codeID)
}
