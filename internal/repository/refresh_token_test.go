// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/atelier-api/internal/repository"
	"codeberg.org/oliverandrich/atelier-api/internal/testutil"
)

func TestCreateAndGetRefreshToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "pw")

	require.NoError(t, repo.CreateRefreshToken(ctx, "jti-1", user.ID, time.Now().UTC().Add(time.Hour)))

	token, err := repo.GetRefreshToken(ctx, "jti-1")

	require.NoError(t, err)
	assert.Equal(t, user.ID, token.UserID)
	assert.Nil(t, token.RevokedAt)
	assert.True(t, token.Usable(time.Now().UTC()))
}

func TestGetRefreshToken_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetRefreshToken(context.Background(), "missing")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRevokeRefreshToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "pw")

	require.NoError(t, repo.CreateRefreshToken(ctx, "jti-1", user.ID, time.Now().UTC().Add(time.Hour)))
	require.NoError(t, repo.RevokeRefreshToken(ctx, "jti-1"))

	token, err := repo.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.NotNil(t, token.RevokedAt)
	assert.False(t, token.Usable(time.Now().UTC()))
}

func TestRevokeUserRefreshTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "pw")
	bob := testutil.NewTestUser(t, repo, "bob", "bob@example.com", "pw")
	expires := time.Now().UTC().Add(time.Hour)

	require.NoError(t, repo.CreateRefreshToken(ctx, "a-1", alice.ID, expires))
	require.NoError(t, repo.CreateRefreshToken(ctx, "a-2", alice.ID, expires))
	require.NoError(t, repo.CreateRefreshToken(ctx, "b-1", bob.ID, expires))

	require.NoError(t, repo.RevokeUserRefreshTokens(ctx, alice.ID))

	for _, jti := range []string{"a-1", "a-2"} {
		token, err := repo.GetRefreshToken(ctx, jti)
		require.NoError(t, err)
		assert.False(t, token.Usable(time.Now().UTC()), jti)
	}

	// Other users keep their sessions.
	token, err := repo.GetRefreshToken(ctx, "b-1")
	require.NoError(t, err)
	assert.True(t, token.Usable(time.Now().UTC()))
}

func TestExpiredRefreshTokenNotUsable(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "pw")

	require.NoError(t, repo.CreateRefreshToken(ctx, "jti-1", user.ID, time.Now().UTC().Add(-time.Minute)))

	token, err := repo.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, token.Usable(time.Now().UTC()))
}

func TestDeleteExpiredRefreshTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "pw")

	require.NoError(t, repo.CreateRefreshToken(ctx, "old", user.ID, time.Now().UTC().Add(-time.Minute)))
	require.NoError(t, repo.CreateRefreshToken(ctx, "live", user.ID, time.Now().UTC().Add(time.Hour)))

	deleted, err := repo.DeleteExpiredRefreshTokens(ctx, time.Now().UTC())

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetRefreshToken(ctx, "live")
	assert.NoError(t, err)
}
