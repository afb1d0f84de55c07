package model

import "time"

// Note 学习笔记
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Subject   string    `gorm:"type:varchar(128)" json:"subject"`
	IsShared  bool      `gorm:"not null;default:false" json:"isShared"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Note) TableName() string { return "note" }

// SharedNote 笔记分享记录，同一笔记对同一用户只分享一次
type SharedNote struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	NoteID           uint      `gorm:"not null;uniqueIndex:uk_note_share" json:"noteId"`
	SharedWithUserID uint      `gorm:"not null;uniqueIndex:uk_note_share;index" json:"sharedWithUserId"`
	SharedByUserID   uint      `gorm:"not null" json:"sharedByUserId"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (SharedNote) TableName() string { return "shared_note" }

// SharedNoteView 别人分享给我的笔记
type SharedNoteView struct {
	Note
	SharedAt time.Time   `json:"sharedAt"`
	Author   UserSummary `json:"author"`
}
