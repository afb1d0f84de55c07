package repository

import (
	"context"

	"studyhub/internal/model"

	"gorm.io/gorm"
)

// MemoryRepository 照片回忆数据仓储
type MemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func (r *MemoryRepository) Create(ctx context.Context, m *model.Memory) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListByUser 用户的全部回忆，最新的在前
func (r *MemoryRepository) ListByUser(ctx context.Context, userID uint) ([]*model.Memory, error) {
	var list []*model.Memory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *MemoryRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Memory, error) {
	var m model.Memory
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Memory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
