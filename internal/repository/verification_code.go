// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
)

// CreateVerificationCode inserts a new verification code for a user.
func (r *Repository) CreateVerificationCode(ctx context.Context, userID, codeType string, expiresAt time.Time) (*models.VerificationCode, error) {
	code := &models.VerificationCode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      codeType,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_codes (id, user_id, type, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		code.ID, code.UserID, code.Type, code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// GetVerificationCode retrieves an unexpired code by ID and type.
func (r *Repository) GetVerificationCode(ctx context.Context, id, codeType string, now time.Time) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.GetContext(ctx, &code,
		`SELECT * FROM verification_codes WHERE id = ? AND type = ? AND expires_at > ?`,
		id, codeType, now)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &code, nil
}

// DeleteVerificationCode removes a code by ID.
func (r *Repository) DeleteVerificationCode(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE id = ?`, id)
	return err
}

// DeleteUserVerificationCodes removes all codes of one type for a user.
func (r *Repository) DeleteUserVerificationCodes(ctx context.Context, userID, codeType string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE user_id = ? AND type = ?`, userID, codeType)
	return err
}

// CountRecentVerificationCodes counts codes of one type created for a user
// since the given time. Used to rate limit password-reset requests.
func (r *Repository) CountRecentVerificationCodes(ctx context.Context, userID, codeType string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM verification_codes WHERE user_id = ? AND type = ? AND created_at > ?`,
		userID, codeType, since)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteExpiredVerificationCodes removes codes past their expiry.
func (r *Repository) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
