// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Verification code types.
const (
	CodeTypeEmailVerification = "email_verification"
	CodeTypePasswordReset     = "password_reset"
)

// VerificationCode is a single-use, typed, expiring record linking a user to
// a pending action. It is deleted on successful consumption.
type VerificationCode struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the code is past its expiry.
func (v *VerificationCode) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
