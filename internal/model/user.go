package model

import (
	"time"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// 身份字段（ID/Username/Email）注册后不可修改，资料字段可修改
type User struct {
	ID                uint      `gorm:"primaryKey"`
	Username          string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email             string    `gorm:"type:varchar(128);not null;uniqueIndex;comment:邮箱"`
	PasswordHash      string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	DisplayName       string    `gorm:"type:varchar(64);comment:显示名"`
	ProfilePictureRef string    `gorm:"type:varchar(512);comment:头像URL"`
	Bio               string    `gorm:"type:varchar(512);comment:个人简介"`
	CreatedAt         time.Time `gorm:"comment:创建时间"`
	UpdatedAt         time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }

// UserSummary 用户资料摘要，用于好友列表、会话列表等
type UserSummary struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	ProfilePictureRef string `json:"profilePictureRef"`
}

// Summary 转换为资料摘要
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		ProfilePictureRef: u.ProfilePictureRef,
	}
}
