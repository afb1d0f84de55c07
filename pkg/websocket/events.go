package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// 客户端 -> 服务端事件
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventHeartbeat   = "heartbeat"
)

// 服务端 -> 客户端事件
const (
	EventRoomJoined     = "room_joined"
	EventReceiveMessage = "receive_message"
	EventUserTyping     = "user_typing"
	EventError          = "error"
)

// Envelope 事件帧 {"event": "...", "data": {...}}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TopicID 会话频道ID，客户端可以传字符串或数字
type TopicID string

func (t *TopicID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = TopicID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("conversationId must be a string or number")
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*t = TopicID(n.String())
	return nil
}

// RoomRequest join_room / leave_room
type RoomRequest struct {
	ConversationID TopicID `json:"conversationId"`
}

// RoomJoined room_joined
type RoomJoined struct {
	ConversationID string `json:"conversationId"`
}

// SendMessage send_message
type SendMessage struct {
	ConversationID TopicID `json:"conversationId"`
	SenderID       uint    `json:"senderId"`
	Message        string  `json:"message"`
}

// ReceiveMessage receive_message
type ReceiveMessage struct {
	SenderID       uint      `json:"senderId"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversationId"`
}

// Typing typing
type Typing struct {
	ConversationID TopicID `json:"conversationId"`
	UserID         uint    `json:"userId"`
	Username       string  `json:"username"`
}

// UserTyping user_typing
type UserTyping struct {
	UserID         uint   `json:"userId"`
	Username       string `json:"username"`
	ConversationID string `json:"conversationId"`
}

// ErrorEvent error
type ErrorEvent struct {
	Message string `json:"message"`
}

func encodeEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
