package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"studyhub/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Client 一个实时连接
// send 只由 Hub.Unregister 关闭
type Client struct {
	ID       string
	UserID   uint
	Username string

	conn *websocket.Conn
	send chan []byte
}

// NewClient 创建连接，conn 在测试中可以为nil
func NewClient(userID uint, username string, conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, buffer),
	}
}

// Messages 发送队列（只读）
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// enqueue 非阻塞入队，队列满时返回false
// 调用方需保证连接尚未 Unregister
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) reply(event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error("编码实时事件失败", zap.String("event", event), zap.Error(err))
		return
	}
	if !c.enqueue(payload) {
		logger.Warn("发送队列已满，丢弃回复", zap.String("event", event), zap.String("client_id", c.ID))
	}
}

// dispatch 处理客户端发来的一帧事件
func (c *Client) dispatch(ctx context.Context, h *Hub, presence Presence, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.reply(EventError, ErrorEvent{Message: "invalid event frame"})
		return
	}

	switch env.Event {
	case EventJoinRoom:
		var req RoomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || strings.TrimSpace(string(req.ConversationID)) == "" {
			c.reply(EventError, ErrorEvent{Message: "conversationId is required"})
			return
		}
		topic := string(req.ConversationID)
		if !CanJoin(c.UserID, topic) {
			c.reply(EventError, ErrorEvent{Message: "cannot join this conversation"})
			return
		}
		if h.Join(c, topic) {
			c.reply(EventRoomJoined, RoomJoined{ConversationID: topic})
		}

	case EventLeaveRoom:
		var req RoomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ConversationID == "" {
			c.reply(EventError, ErrorEvent{Message: "conversationId is required"})
			return
		}
		h.Leave(c, string(req.ConversationID))

	case EventSendMessage:
		var req SendMessage
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ConversationID == "" {
			c.reply(EventError, ErrorEvent{Message: "conversationId is required"})
			return
		}
		// 发送者以连接身份为准
		payload, err := encodeEvent(EventReceiveMessage, ReceiveMessage{
			SenderID:       c.UserID,
			Message:        req.Message,
			Timestamp:      time.Now(),
			ConversationID: string(req.ConversationID),
		})
		if err != nil {
			logger.Error("编码实时消息失败", zap.Error(err))
			return
		}
		h.Publish(string(req.ConversationID), payload)

	case EventTyping:
		var req Typing
		if err := json.Unmarshal(env.Data, &req); err != nil || req.ConversationID == "" {
			c.reply(EventError, ErrorEvent{Message: "conversationId is required"})
			return
		}
		// 用户名同样以连接身份为准
		payload, err := encodeEvent(EventUserTyping, UserTyping{
			UserID:         c.UserID,
			Username:       c.Username,
			ConversationID: string(req.ConversationID),
		})
		if err != nil {
			logger.Error("编码输入状态失败", zap.Error(err))
			return
		}
		h.PublishExcept(string(req.ConversationID), payload, c)

	case EventHeartbeat:
		// 刷新在线状态TTL
		if presence != nil {
			if err := presence.Refresh(ctx, c.UserID); err != nil {
				logger.Debug("刷新在线状态失败", zap.Uint("user_id", c.UserID), zap.Error(err))
			}
		}

	default:
		c.reply(EventError, ErrorEvent{Message: "unknown event: " + env.Event})
	}
}

// readPump 读取客户端事件，超时未收到任何数据（包括pong）则断开
func (c *Client) readPump(ctx context.Context, h *Hub, presence Presence, readTimeout time.Duration) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket连接异常断开", zap.Uint("user_id", c.UserID), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		c.dispatch(ctx, h, presence, payload)
	}
}

// writePump 发送队列中的消息，并定时发送ping
// 发送队列关闭后发送close帧并退出
func (c *Client) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
