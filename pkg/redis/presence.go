package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 在线状态相关常量
const (
	PresenceKeyPrefix = "studyhub:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "studyhub:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute           // 在线状态TTL（心跳周期的数倍）
)

// ErrNotOnline 刷新时用户状态已过期
var ErrNotOnline = errors.New("user is not online")

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   uint      `json:"userId"`
	Username string    `json:"username"`
	LastSeen time.Time `json:"lastSeen"`
}

// Presence 基于Redis的在线状态
// 每个在线用户一个带TTL的key，另有一个集合记录在线用户ID
type Presence struct {
	client *redis.Client
}

// NewPresence 创建在线状态记录器
func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

// PresenceKey 用户在线状态key
func PresenceKey(userID uint) string {
	return PresenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// SetOnline 设置用户在线
func (p *Presence) SetOnline(ctx context.Context, userID uint, username string) error {
	data, err := json.Marshal(PresenceData{UserID: userID, Username: username, LastSeen: time.Now()})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, PresenceKey(userID), data, PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// SetOffline 移除用户在线状态
func (p *Presence) SetOffline(ctx context.Context, userID uint) error {
	pipe := p.client.TxPipeline()
	pipe.Del(ctx, PresenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// Refresh 延长在线状态TTL
func (p *Presence) Refresh(ctx context.Context, userID uint) error {
	ok, err := p.client.Expire(ctx, PresenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return ErrNotOnline
	}
	return nil
}

// IsOnline 检查用户是否在线
func (p *Presence) IsOnline(ctx context.Context, userID uint) (bool, error) {
	n, err := p.client.Exists(ctx, PresenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return n > 0, nil
}

// OnlineUserIDs 在线用户ID
// 集合中TTL已过期的成员会被顺带清理
func (p *Presence) OnlineUserIDs(ctx context.Context) ([]uint, error) {
	members, err := p.client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	ids := make([]uint, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		online, err := p.IsOnline(ctx, uint(id))
		if err != nil {
			return nil, err
		}
		if !online {
			p.client.SRem(ctx, OnlineUsersKey, member)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
