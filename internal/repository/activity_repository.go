package repository

import (
	"context"
	"time"

	"studyhub/internal/model"

	"gorm.io/gorm"
)

// ActivityFilter 活动列表过滤条件，零值表示不过滤
type ActivityFilter struct {
	From         *time.Time
	To           *time.Time
	ActivityType string
}

// ActivityRepository 学习活动数据仓储
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetOwned 获取属于userID的活动，不存在或不属于该用户时返回 ErrNotFound
func (r *ActivityRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Activity, error) {
	var a model.Activity
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// List 按过滤条件列出用户的活动，最新的在前
func (r *ActivityRepository) List(ctx context.Context, userID uint, f ActivityFilter) ([]*model.Activity, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.ActivityType != "" {
		q = q.Where("activity_type = ?", f.ActivityType)
	}

	var list []*model.Activity
	err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

// Save 保存修改后的活动
func (r *ActivityRepository) Save(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ActivityRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Activity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
