package service

import (
	"context"
	"testing"

	"studyhub/internal/model"
	"studyhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, token, err := env.users.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", u.DisplayName)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, _, err = env.users.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, _, err = env.users.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "123"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "password", appErr.Field)

	logged, _, err := env.users.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, _, err = env.users.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, _, err = env.users.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestProfileAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _, err := env.users.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	b, _, err := env.users.Register(ctx, RegisterInput{Username: "alfred", Email: "b@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := env.users.UpdateProfile(ctx, a.ID, ProfileUpdate{Bio: strPtr("likes math")})
	require.NoError(t, err)
	assert.Equal(t, "likes math", updated.Bio)
	assert.Equal(t, "alice", updated.Username)

	_, err = env.users.UpdateProfile(ctx, a.ID, ProfileUpdate{DisplayName: strPtr("  ")})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, status, err := env.users.GetProfile(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationNone, status)

	_, err = env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, status, err = env.users.GetProfile(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationPending, status)

	_, err = env.users.Search(ctx, a.ID, "a")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	found, err := env.users.Search(ctx, a.ID, "AL")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alfred", found[0].Username)

	online, err := env.users.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)
}
