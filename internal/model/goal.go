package model

import "time"

// GoalStatus 目标状态
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
)

// Valid 是否为合法状态
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalAbandoned:
		return true
	}
	return false
}

// Goal 学习目标
type Goal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	GoalType    string     `gorm:"type:varchar(64)" json:"goalType"`
	TargetValue int        `gorm:"not null" json:"targetValue"`
	TargetUnit  string     `gorm:"type:varchar(32)" json:"targetUnit"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Status      GoalStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `gorm:"index" json:"endDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Goal) TableName() string { return "goal" }
