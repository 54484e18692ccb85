// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// OtpCode stores the bcrypt hash of a one-time numeric code, keyed by email.
// At most one live OTP exists per email; a new one replaces the previous.
type OtpCode struct { //nolint:govet // fieldalignment: readability over optimization
	Email     string    `db:"email" json:"email"`
	OtpHash   string    `db:"otp_hash" json:"-"`
	Attempts  int       `db:"attempts" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the OTP is past its expiry.
func (o *OtpCode) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
