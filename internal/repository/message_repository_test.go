package repository

import (
	"context"
	"testing"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedMessage(t *testing.T, db *gorm.DB, from, to uint, body string, at time.Time) *model.Message {
	t.Helper()
	m := &model.Message{SenderID: from, RecipientID: to, Body: body, CreatedAt: at}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestFetchConversationAndMarkRead_OnlyReturnedRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	var ids []uint
	for i := 0; i < 5; i++ {
		m := seedMessage(t, db, b.ID, a.ID, "hi", base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, m.ID)
	}

	msgs, err := repo.FetchConversationAndMarkRead(ctx, a.ID, b.ID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// 最近的3条，升序返回
	assert.Equal(t, ids[2], msgs[0].ID)
	assert.Equal(t, ids[4], msgs[2].ID)
	for _, m := range msgs {
		assert.True(t, m.IsRead)
	}

	unread, err := repo.GetUnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestFetchConversationAndMarkRead_KeepsOwnSentUnread(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	seedMessage(t, db, a.ID, b.ID, "from a", time.Now())

	msgs, err := repo.FetchConversationAndMarkRead(ctx, a.ID, b.ID, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsRead)

	unread, err := repo.GetUnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestGetConversationHeads(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")

	base := time.Now().Add(-time.Hour)
	seedMessage(t, db, a.ID, b.ID, "ab1", base)
	lastAB := seedMessage(t, db, b.ID, a.ID, "ab2", base.Add(time.Minute))
	lastAC := seedMessage(t, db, c.ID, a.ID, "ac1", base.Add(2*time.Minute))
	seedMessage(t, db, b.ID, c.ID, "bc1", base.Add(3*time.Minute))

	heads, err := repo.GetConversationHeads(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, heads, 2)
	assert.Equal(t, lastAC.ID, heads[0].ID)
	assert.Equal(t, lastAB.ID, heads[1].ID)

	counts, err := repo.GetUnreadCountsBySender(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[b.ID])
	assert.Equal(t, int64(1), counts[c.ID])
}

func TestDeleteBySender(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	m := seedMessage(t, db, a.ID, b.ID, "hello", time.Now())

	assert.ErrorIs(t, repo.DeleteBySender(ctx, m.ID, b.ID), ErrNotFound)
	require.NoError(t, repo.DeleteBySender(ctx, m.ID, a.ID))
	assert.ErrorIs(t, repo.DeleteBySender(ctx, m.ID, a.ID), ErrNotFound)

	_, err := repo.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
