package model

import (
	"time"
)

// LinkStatus 好友关系状态，删除即解除，不单独存储
type LinkStatus string

const (
	LinkPending  LinkStatus = "pending"
	LinkAccepted LinkStatus = "accepted"
)

// RelationStatus 两个用户之间的关系（与方向无关）
type RelationStatus string

const (
	RelationNone     RelationStatus = "none"
	RelationPending  RelationStatus = "pending"
	RelationAccepted RelationStatus = "accepted"
)

// LinkRole 用户在一条好友关系中的角色
type LinkRole int

const (
	RoleNone LinkRole = iota
	RoleRequester
	RoleRecipient
)

// FriendLink 好友关系（有向边）
// RequesterID/RecipientID 在创建时确定，之后不变
// PairLow/PairHigh 为无序用户对的规范形式，唯一索引保证任意两人之间最多一条关系
type FriendLink struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RequesterID uint       `gorm:"not null;index;comment:请求发起者" json:"requesterId"`
	RecipientID uint       `gorm:"not null;index;comment:请求接收者" json:"recipientId"`
	PairLow     uint       `gorm:"not null;uniqueIndex:uk_friend_pair;comment:较小的用户ID" json:"-"`
	PairHigh    uint       `gorm:"not null;uniqueIndex:uk_friend_pair;comment:较大的用户ID" json:"-"`
	Status      LinkStatus `gorm:"type:varchar(16);not null;default:'pending';comment:关系状态" json:"status"`
	CreatedAt   time.Time  `gorm:"comment:创建时间" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"comment:更新时间" json:"updatedAt"`
}

func (FriendLink) TableName() string { return "friend_link" }

// NewFriendRequest 创建待确认的好友请求
func NewFriendRequest(requesterID, recipientID uint) *FriendLink {
	low, high := NormalizePair(requesterID, recipientID)
	return &FriendLink{
		RequesterID: requesterID,
		RecipientID: recipientID,
		PairLow:     low,
		PairHigh:    high,
		Status:      LinkPending,
	}
}

// NormalizePair 返回 (较小ID, 较大ID)
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// RoleOf 返回用户在该关系中的角色
func (l *FriendLink) RoleOf(userID uint) LinkRole {
	switch userID {
	case l.RequesterID:
		return RoleRequester
	case l.RecipientID:
		return RoleRecipient
	default:
		return RoleNone
	}
}

// CounterpartOf 返回关系中的另一方，userID 不在关系中时返回0
func (l *FriendLink) CounterpartOf(userID uint) uint {
	switch l.RoleOf(userID) {
	case RoleRequester:
		return l.RecipientID
	case RoleRecipient:
		return l.RequesterID
	default:
		return 0
	}
}

// Relation 转换为与方向无关的关系状态
func (l *FriendLink) Relation() RelationStatus {
	if l == nil {
		return RelationNone
	}
	if l.Status == LinkAccepted {
		return RelationAccepted
	}
	return RelationPending
}

// FriendRequestView 待处理请求 + 对方资料
type FriendRequestView struct {
	RequestID uint        `json:"requestId"`
	Status    LinkStatus  `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"user"`
}
