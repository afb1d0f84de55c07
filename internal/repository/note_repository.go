package repository

import (
	"context"

	"studyhub/internal/model"
	dbPkg "studyhub/pkg/db"

	"gorm.io/gorm"
)

// NoteRepository 笔记数据仓储
type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NoteRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Note, error) {
	var n model.Note
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// ListOwned 用户自己的笔记，最近更新的在前
func (r *NoteRepository) ListOwned(ctx context.Context, userID uint) ([]*model.Note, error) {
	var notes []*model.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) Save(ctx context.Context, n *model.Note) error {
	return r.db.WithContext(ctx).Save(n).Error
}

// DeleteOwned 删除笔记及其分享记录
func (r *NoteRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	return translate(dbPkg.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("note_id = ?", id).Delete(&model.SharedNote{}).Error
	}))
}

// Share 记录分享并标记笔记为已分享
// 同一笔记重复分享给同一用户时返回 ErrDuplicate
func (r *NoteRepository) Share(ctx context.Context, share *model.SharedNote) error {
	return translate(dbPkg.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.SharedNote{}).
			Where("note_id = ? AND shared_with_user_id = ?", share.NoteID, share.SharedWithUserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(share).Error; err != nil {
			return err
		}
		return tx.Model(&model.Note{}).Where("id = ?", share.NoteID).Update("is_shared", true).Error
	}))
}

// ListSharedWith 分享给userID的笔记及分享记录，最新分享在前
func (r *NoteRepository) ListSharedWith(ctx context.Context, userID uint) ([]*model.SharedNote, map[uint]*model.Note, error) {
	var shares []*model.SharedNote
	if err := r.db.WithContext(ctx).
		Where("shared_with_user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&shares).Error; err != nil {
		return nil, nil, err
	}

	notes := make(map[uint]*model.Note, len(shares))
	if len(shares) == 0 {
		return shares, notes, nil
	}

	ids := make([]uint, 0, len(shares))
	for _, s := range shares {
		ids = append(ids, s.NoteID)
	}
	var list []*model.Note
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, nil, err
	}
	for _, n := range list {
		notes[n.ID] = n
	}
	return shares, notes, nil
}
