// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// RefreshToken is the server-side record of an issued refresh token,
// identified by its jti claim. Rotation revokes the old record and inserts a
// new one, so a replayed token is detectable.
type RefreshToken struct { //nolint:govet // fieldalignment: readability over optimization
	JTI       string     `db:"jti" json:"jti"`
	UserID    string     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"-"`
}

// Usable reports whether the record still authorizes a refresh.
func (r *RefreshToken) Usable(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}
