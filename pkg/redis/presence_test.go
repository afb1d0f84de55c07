package redis

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceKey(t *testing.T) {
	assert.Equal(t, "studyhub:presence:user:42", PresenceKey(42))
}

// 需要本地Redis：REDIS_TEST_ADDR=localhost:6379 go test ./pkg/redis/...
func TestPresence_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(ctx)
		_ = client.Close()
	})
	require.NoError(t, client.FlushDB(ctx).Err())

	p := NewPresence(client)
	require.NoError(t, p.SetOnline(ctx, 7, "alice"))

	online, err := p.IsOnline(ctx, 7)
	require.NoError(t, err)
	assert.True(t, online)
	require.NoError(t, p.Refresh(ctx, 7))

	ids, err := p.OnlineUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)

	require.NoError(t, p.SetOffline(ctx, 7))
	assert.ErrorIs(t, p.Refresh(ctx, 7), ErrNotOnline)

	// 集合里残留但key已过期的成员被清理
	require.NoError(t, client.SAdd(ctx, OnlineUsersKey, 8).Err())
	ids, err = p.OnlineUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
