package service

import (
	"context"
	"testing"

	"studyhub/internal/testutil"
	"studyhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareNote_RequiresAcceptedFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	note, err := env.notes.Create(ctx, a.ID, NoteInput{Title: strPtr("Calculus"), Content: strPtr("limits"), Subject: strPtr("math")})
	require.NoError(t, err)

	_, err = env.notes.Share(ctx, a.ID, note.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	link, err := env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = env.notes.Share(ctx, a.ID, note.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = env.friends.AcceptRequest(ctx, link.ID, b.ID)
	require.NoError(t, err)

	// 别人的笔记不能分享
	_, err = env.notes.Share(ctx, b.ID, note.ID, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.notes.Share(ctx, a.ID, note.ID, b.ID)
	require.NoError(t, err)
	_, err = env.notes.Share(ctx, a.ID, note.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	shared, err := env.notes.ListSharedWithMe(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "Calculus", shared[0].Title)
	assert.True(t, shared[0].IsShared)
	assert.Equal(t, "alice", shared[0].Author.Username)

	require.NoError(t, env.notes.Delete(ctx, a.ID, note.ID))
	shared, err = env.notes.ListSharedWithMe(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestNoteCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	_, err := env.notes.Create(ctx, a.ID, NoteInput{Title: strPtr(""), Content: strPtr("x")})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	note, err := env.notes.Create(ctx, a.ID, NoteInput{Title: strPtr("t"), Content: strPtr("c")})
	require.NoError(t, err)

	updated, err := env.notes.Update(ctx, a.ID, note.ID, NoteInput{Content: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
	assert.Equal(t, "t", updated.Title)

	_, err = env.notes.Update(ctx, b.ID, note.ID, NoteInput{Content: strPtr("hack")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, env.notes.Delete(ctx, b.ID, note.ID), apperr.ErrNotFound)

	notes, err := env.notes.ListOwn(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}
