package service

import (
	"context"
	"sync"
	"testing"

	"studyhub/internal/model"
	"studyhub/internal/testutil"
	"studyhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	_, err := env.messages.Send(ctx, a.ID, 9999, "hi", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.messages.Send(ctx, a.ID, b.ID, "   ", nil)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindInvalidArgument, appErr.Kind)
	assert.Equal(t, "body", appErr.Field)

	// 只有图片也可以发送
	m, err := env.messages.Send(ctx, a.ID, b.ID, "", strPtr("/uploads/x.png"))
	require.NoError(t, err)
	require.NotNil(t, m.ImageRef)
	assert.False(t, m.IsRead)

	// 不需要是好友
	status, err := env.friends.StatusBetween(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationNone, status)
}

func TestSend_PublishesAfterPersist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	_, err := env.messages.Send(ctx, a.ID, b.ID, "hello", nil)
	require.NoError(t, err)

	require.Len(t, env.publisher.calls, 1)
	assert.Equal(t, published{a.ID, b.ID, "hello"}, env.publisher.calls[0])

	// 校验失败时不推送
	_, err = env.messages.Send(ctx, a.ID, b.ID, "", nil)
	require.Error(t, err)
	assert.Len(t, env.publisher.calls, 1)
}

func TestGetConversation_ScenarioMarksRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	m1, err := env.messages.Send(ctx, a.ID, b.ID, "hi", nil)
	require.NoError(t, err)
	m2, err := env.messages.Send(ctx, a.ID, b.ID, "there", nil)
	require.NoError(t, err)

	count, err := env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	conv, err := env.messages.GetConversation(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, m1.ID, conv[0].ID)
	assert.Equal(t, "hi", conv[0].Body)
	assert.Equal(t, m2.ID, conv[1].ID)
	assert.Equal(t, "there", conv[1].Body)
	assert.True(t, conv[0].IsRead)
	assert.True(t, conv[1].IsRead)

	count, err = env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	var stored model.Message
	require.NoError(t, env.db.First(&stored, m1.ID).Error)
	assert.True(t, stored.IsRead)

	// 发送者查看会话不会把自己发出的消息标记为已读
	m3, err := env.messages.Send(ctx, a.ID, b.ID, "again", nil)
	require.NoError(t, err)
	_, err = env.messages.GetConversation(ctx, a.ID, b.ID, 0)
	require.NoError(t, err)
	var m3Stored model.Message
	require.NoError(t, env.db.First(&m3Stored, m3.ID).Error)
	assert.Equal(t, m3.ID, m3Stored.ID)
	assert.False(t, m3Stored.IsRead)
}

func TestGetConversation_LimitKeepsOlderUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	for i := 0; i < 4; i++ {
		_, err := env.messages.Send(ctx, a.ID, b.ID, "msg", nil)
		require.NoError(t, err)
	}

	conv, err := env.messages.GetConversation(ctx, b.ID, a.ID, 3)
	require.NoError(t, err)
	assert.Len(t, conv, 3)

	count, err := env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUnreadCount_InterleavedSenders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := testutil.CreateUser(t, env.db, "bob")
	senders := []*model.User{
		testutil.CreateUser(t, env.db, "alice"),
		testutil.CreateUser(t, env.db, "carol"),
		testutil.CreateUser(t, env.db, "dave"),
	}

	var wg sync.WaitGroup
	for _, s := range senders {
		wg.Add(1)
		go func(senderID uint) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				_, err := env.messages.Send(ctx, senderID, b.ID, "ping", nil)
				assert.NoError(t, err)
			}
		}(s.ID)
	}
	wg.Wait()

	count, err := env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)

	_, err = env.messages.GetConversation(ctx, b.ID, senders[1].ID, 0)
	require.NoError(t, err)

	var expected int64
	require.NoError(t, env.db.Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", b.ID, false).
		Count(&expected).Error)
	count, err = env.messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, count)
	assert.Equal(t, int64(10), count)
}

func TestListConversations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")
	c := testutil.CreateUser(t, env.db, "carol")

	_, err := env.messages.Send(ctx, b.ID, a.ID, "from bob 1", nil)
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, b.ID, a.ID, "from bob 2", nil)
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, a.ID, c.ID, "to carol", nil)
	require.NoError(t, err)

	convs, err := env.messages.ListConversations(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// carol 的会话最新
	assert.Equal(t, c.ID, convs[0].OtherUserID)
	assert.Equal(t, "to carol", convs[0].LastMessage)
	assert.Equal(t, int64(0), convs[0].UnreadCount)
	assert.Equal(t, "carol", convs[0].OtherUser.Username)

	assert.Equal(t, b.ID, convs[1].OtherUserID)
	assert.Equal(t, "from bob 2", convs[1].LastMessage)
	assert.Equal(t, int64(2), convs[1].UnreadCount)

	empty, err := env.messages.ListConversations(ctx, testutil.CreateUser(t, env.db, "erin").ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteMessage_OnlySender(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")

	m, err := env.messages.Send(ctx, a.ID, b.ID, "oops", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, env.messages.DeleteMessage(ctx, m.ID, b.ID), apperr.ErrNotFound)
	require.NoError(t, env.messages.DeleteMessage(ctx, m.ID, a.ID))
	assert.ErrorIs(t, env.messages.DeleteMessage(ctx, m.ID, a.ID), apperr.ErrNotFound)

	conv, err := env.messages.GetConversation(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, conv)
}
