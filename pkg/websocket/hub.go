package websocket

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"studyhub/pkg/logger"
	"studyhub/pkg/metrics"

	"go.uber.org/zap"
)

// directTopicPrefix 私聊会话的频道前缀
const directTopicPrefix = "dm:"

// Hub 按会话频道转发实时事件
// topics 与 subs 互为索引，都在 mu 保护下修改
// 由 main 创建一个实例并传给需要它的地方
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{} // 频道 -> 订阅者
	subs   map[*Client]map[string]struct{} // 连接 -> 已加入的频道
	users  map[uint]int                    // 用户 -> 连接数
}

// NewHub 创建Hub
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		subs:   make(map[*Client]map[string]struct{}),
		users:  make(map[uint]int),
	}
}

// DirectTopic 两个用户私聊的规范频道名 dm:<小ID>:<大ID>
func DirectTopic(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s%d:%d", directTopicPrefix, a, b)
}

// parseDirectTopic 解析私聊频道，非私聊频道返回 ok=false
func parseDirectTopic(topic string) (low, high uint, ok bool) {
	rest, found := strings.CutPrefix(topic, directTopicPrefix)
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, errA := strconv.ParseUint(parts[0], 10, 64)
	b, errB := strconv.ParseUint(parts[1], 10, 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return uint(a), uint(b), true
}

// CanJoin 私聊频道只允许双方加入，其他频道不做限制
func CanJoin(userID uint, topic string) bool {
	low, high, ok := parseDirectTopic(topic)
	if !ok {
		return true
	}
	return userID == low || userID == high
}

// Register 登记新连接
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[c]; ok {
		return
	}
	h.subs[c] = make(map[string]struct{})
	h.users[c.UserID]++
	metrics.RelayConnections.Inc()
}

// Unregister 连接断开：退出所有频道并关闭发送队列
// 返回该用户剩余的连接数
func (h *Hub) Unregister(c *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	topics, ok := h.subs[c]
	if !ok {
		return h.users[c.UserID]
	}
	for topic := range topics {
		h.removeLocked(c, topic)
	}
	delete(h.subs, c)
	close(c.send)
	metrics.RelayConnections.Dec()

	h.users[c.UserID]--
	remaining := h.users[c.UserID]
	if remaining <= 0 {
		delete(h.users, c.UserID)
		remaining = 0
	}
	return remaining
}

// Join 加入频道，连接未登记时返回false
func (h *Hub) Join(c *Client, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.subs[c]
	if !ok {
		return false
	}
	set, ok := h.topics[topic]
	if !ok {
		set = make(map[*Client]struct{})
		h.topics[topic] = set
		metrics.RelayTopics.Inc()
	}
	set[c] = struct{}{}
	joined[topic] = struct{}{}
	return true
}

// Leave 退出频道
func (h *Hub) Leave(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, topic)
	if joined, ok := h.subs[c]; ok {
		delete(joined, topic)
	}
}

func (h *Hub) removeLocked(c *Client, topic string) {
	set, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.topics, topic)
		metrics.RelayTopics.Dec()
	}
}

// Publish 向频道所有订阅者（包括发送者自己）投递，返回成功入队的数量
func (h *Hub) Publish(topic string, payload []byte) int {
	return h.PublishExcept(topic, payload, nil)
}

// PublishExcept 向频道中除 origin 以外的订阅者投递
// 订阅者发送队列已满时丢弃该条并记录警告
func (h *Hub) PublishExcept(topic string, payload []byte, origin *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.topics[topic] {
		if c == origin {
			continue
		}
		if c.enqueue(payload) {
			delivered++
			continue
		}
		metrics.RelayDropped.Inc()
		logger.Warn("发送队列已满，丢弃实时消息",
			zap.String("topic", topic),
			zap.String("client_id", c.ID),
			zap.Uint("user_id", c.UserID),
		)
	}
	metrics.RelayPublished.Add(float64(delivered))
	return delivered
}

// PublishDirect REST 发送私信后推送到双方的私聊频道
func (h *Hub) PublishDirect(senderID, recipientID uint, body string, sentAt time.Time) {
	topic := DirectTopic(senderID, recipientID)
	payload, err := encodeEvent(EventReceiveMessage, ReceiveMessage{
		SenderID:       senderID,
		Message:        body,
		Timestamp:      sentAt,
		ConversationID: topic,
	})
	if err != nil {
		logger.Error("编码实时消息失败", zap.Error(err))
		return
	}
	h.Publish(topic, payload)
}

// Subscribers 频道当前订阅数
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Topics 连接已加入的频道数
func (h *Hub) Topics(c *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[c])
}

// Connections 用户当前的连接数
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.users[userID]
}
