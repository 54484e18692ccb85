// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
)

// CreateRefreshToken records an issued refresh token by its jti.
func (r *Repository) CreateRefreshToken(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (jti, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		jti, userID, expiresAt, time.Now().UTC())
	return err
}

// GetRefreshToken retrieves a refresh-token record by jti.
func (r *Repository) GetRefreshToken(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM refresh_tokens WHERE jti = ?`, jti)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &token, nil
}

// RevokeRefreshToken marks a single token as revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, jti string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL`,
		time.Now().UTC(), jti)
	return err
}

// RevokeUserRefreshTokens revokes every live token for a user. Used after a
// forgotten-password reset to force re-login everywhere.
func (r *Repository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		time.Now().UTC(), userID)
	return err
}

// DeleteExpiredRefreshTokens removes records past their expiry.
func (r *Repository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
