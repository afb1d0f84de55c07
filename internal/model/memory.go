package model

import "time"

// Memory 照片回忆
// ImageKey 为存储后端中的对象键，删除记录时一并删除对象
type Memory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageRef    string    `gorm:"type:varchar(512);not null" json:"imageRef"`
	ImageKey    string    `gorm:"type:varchar(512);not null" json:"-"`
	Tags        string    `gorm:"type:varchar(512)" json:"tags"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (Memory) TableName() string { return "memory" }
