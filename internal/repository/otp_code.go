// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
)

// UpsertOtpCode stores a fresh OTP hash for an email, replacing any previous
// one and resetting the attempt counter. The email primary key makes the
// replacement atomic.
func (r *Repository) UpsertOtpCode(ctx context.Context, email, otpHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_codes (email, otp_hash, attempts, expires_at, created_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET
		   otp_hash = excluded.otp_hash,
		   attempts = 0,
		   expires_at = excluded.expires_at,
		   created_at = excluded.created_at`,
		email, otpHash, expiresAt, time.Now().UTC())
	return err
}

// GetOtpCode retrieves the OTP record for an email.
func (r *Repository) GetOtpCode(ctx context.Context, email string) (*models.OtpCode, error) {
	var code models.OtpCode
	err := r.db.GetContext(ctx, &code, `SELECT * FROM otp_codes WHERE email = ?`, email)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &code, nil
}

// IncrementOtpAttempts bumps the failed-attempt counter and returns the new
// value.
func (r *Repository) IncrementOtpAttempts(ctx context.Context, email string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_codes SET attempts = attempts + 1 WHERE email = ?`, email)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrNotFound
	}

	var attempts int
	if err := r.db.GetContext(ctx, &attempts, `SELECT attempts FROM otp_codes WHERE email = ?`, email); err != nil {
		return 0, wrapErr(err)
	}
	return attempts, nil
}

// DeleteOtpCode removes the OTP record for an email.
func (r *Repository) DeleteOtpCode(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE email = ?`, email)
	return err
}

// DeleteExpiredOtpCodes removes OTP records past their expiry.
func (r *Repository) DeleteExpiredOtpCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
