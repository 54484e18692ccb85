// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/query"
)

// CreateRequestWithNotification inserts an inquiry and its admin notification
// in one transaction; both rows exist afterwards or neither does.
func (r *Repository) CreateRequestWithNotification(ctx context.Context, req *models.Request) (*models.Notification, error) {
	now := time.Now().UTC()
	req.ID = uuid.NewString()
	req.CreatedAt = now

	notification := &models.Notification{
		ID:          uuid.NewString(),
		Kind:        models.NotificationKindRequest,
		ReferenceID: req.ID,
		Message:     fmt.Sprintf("New %s request from %s", req.Type, req.Name),
		CreatedAt:   now,
	}

	err := r.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO requests (id, name, phone_number, textile_name, type, category, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.ID, req.Name, req.PhoneNumber, req.TextileName, req.Type, req.Category, req.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (id, kind, reference_id, message, is_read, created_at)
			 VALUES (?, ?, ?, ?, 0, ?)`,
			notification.ID, notification.Kind, notification.ReferenceID, notification.Message, notification.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// ListRequests returns a page of inquiries plus the total count for the
// filter.
func (r *Repository) ListRequests(ctx context.Context, q *query.Result) ([]models.Request, int, error) {
	where, args := q.Clause()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM requests`+where, args...); err != nil {
		return nil, 0, err
	}

	requests := []models.Request{}
	listArgs := append(args, q.Limit, q.Skip) //nolint:gocritic // new slice intended
	err := r.db.SelectContext(ctx, &requests,
		`SELECT * FROM requests`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListUnreadNotifications returns unread notifications, newest first.
func (r *Repository) ListUnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT * FROM notifications WHERE is_read = 0 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
