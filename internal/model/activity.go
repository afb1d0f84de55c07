package model

import "time"

// Activity 学习活动记录
type Activity struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index;comment:所属用户" json:"userId"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	ActivityType    string    `gorm:"type:varchar(64);not null;index" json:"activityType"`
	Subject         string    `gorm:"type:varchar(128);index" json:"subject"`
	DurationMinutes int       `gorm:"not null;default:0" json:"durationMinutes"`
	Category        string    `gorm:"type:varchar(64)" json:"category"`
	Tags            string    `gorm:"type:varchar(512);comment:逗号分隔" json:"tags"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Activity) TableName() string { return "activity" }
