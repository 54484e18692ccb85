// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/atelier-api/internal/models"
	"codeberg.org/oliverandrich/atelier-api/internal/query"
	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/testutil"
)

func newRequest(name, phone, textile, reqType, category string) *models.Request {
	return &models.Request{
		Name:        name,
		PhoneNumber: phone,
		TextileName: textile,
		Type:        reqType,
		Category:    category,
	}
}

func TestCreateRequestWithNotification(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	req := newRequest("Alice", "+49123", "velvet", "wholesale", "curtains")
	notification, err := repo.CreateRequestWithNotification(ctx, req)

	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, models.NotificationKindRequest, notification.Kind)
	assert.Equal(t, req.ID, notification.ReferenceID)
	assert.Contains(t, notification.Message, "Alice")
	assert.Contains(t, notification.Message, "wholesale")

	// Both rows landed.
	requests, total, err := repo.ListRequests(ctx, query.Build(query.Params{}, query.Filter{}))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, requests, 1)

	unread, err := repo.ListUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestListRequests_SearchAcrossFields(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateRequestWithNotification(ctx, newRequest("Alice", "+491111", "velvet", "custom", "curtains"))
	require.NoError(t, err)
	_, err = repo.CreateRequestWithNotification(ctx, newRequest("Bob", "+492222", "Velour Deluxe", "custom", "sofas"))
	require.NoError(t, err)

	// Search matches name, phone number and textile name.
	q := query.Build(query.Params{Search: "velour"},
		query.Filter{SearchFields: []string{"name", "phone_number", "textile_name"}})
	requests, total, err := repo.ListRequests(ctx, q)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, requests, 1)
	assert.Equal(t, "Bob", requests[0].Name)
}

func TestListRequests_TypeAndCategory(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateRequestWithNotification(ctx, newRequest("Alice", "+491111", "velvet", "wholesale", "Curtains"))
	require.NoError(t, err)
	_, err = repo.CreateRequestWithNotification(ctx, newRequest("Bob", "+492222", "linen", "custom", "curtains"))
	require.NoError(t, err)

	_, total, err := repo.ListRequests(ctx,
		query.Build(query.Params{Type: "wholesale"}, query.Filter{ByType: true}))
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// Category matches case-insensitively.
	_, total, err = repo.ListRequests(ctx,
		query.Build(query.Params{Category: "CURTAINS"}, query.Filter{ByCategory: true}))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMarkNotificationRead(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateRequestWithNotification(ctx, newRequest("Alice", "+49123", "velvet", "custom", "curtains"))
	require.NoError(t, err)

	unread, err := repo.ListUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	require.NoError(t, repo.MarkNotificationRead(ctx, unread[0].ID))

	unread, err = repo.ListUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.MarkNotificationRead(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
