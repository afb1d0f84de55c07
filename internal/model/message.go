package model

import (
	"time"
)

// Message 私信
// 创建后只有 IsRead 可以变化，且只能从 false 变为 true
// 删除为物理删除，只有发送者可以删除
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index:idx_msg_pair,priority:1;comment:发送者ID" json:"senderId"`
	RecipientID uint      `gorm:"not null;index:idx_msg_pair,priority:2;index:idx_msg_unread,priority:1;comment:接收者ID" json:"recipientId"`
	Body        string    `gorm:"type:text;not null;comment:消息内容" json:"body"`
	ImageRef    *string   `gorm:"type:varchar(512);comment:图片URL" json:"imageRef,omitempty"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_msg_unread,priority:2;comment:是否已读" json:"isRead"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间" json:"createdAt"`
}

func (Message) TableName() string { return "message" }

// CounterpartOf 返回消息中的另一方
func (m *Message) CounterpartOf(userID uint) uint {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// Conversation 会话摘要（按需计算，不落库）
type Conversation struct {
	OtherUserID     uint        `json:"otherUserId"`
	OtherUser       UserSummary `json:"otherUser"`
	LastMessage     string      `json:"lastMessage"`
	LastMessageID   uint        `json:"lastMessageId"`
	LastMessageTime time.Time   `json:"lastMessageTime"`
	UnreadCount     int64       `json:"unreadCount"`
}
