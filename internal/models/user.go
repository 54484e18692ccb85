// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// User is a persisted account. The password hash is never serialized.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID               string    `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	GoogleID         *string   `db:"google_id" json:"-"`
	ImageURL         *string   `db:"image_url" json:"image_url,omitempty"`
	IsEmailConfirmed bool      `db:"is_email_confirmed" json:"is_email_confirmed"`
	Role             string    `db:"role" json:"role"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
