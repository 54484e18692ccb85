// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Request is a customer inquiry submitted through the public site.
type Request struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	TextileName string    `db:"textile_name" json:"textile_name"`
	Type        string    `db:"type" json:"type"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Notification kinds.
const (
	NotificationKindRequest = "request"
)

// Notification is an unread-counter entry for the admin panel, created in the
// same transaction as the record it references.
type Notification struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string    `db:"id" json:"id"`
	Kind        string    `db:"kind" json:"kind"`
	ReferenceID string    `db:"reference_id" json:"reference_id"`
	Message     string    `db:"message" json:"message"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
