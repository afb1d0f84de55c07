package repository

import (
	"context"

	"studyhub/internal/model"
	dbPkg "studyhub/pkg/db"

	"gorm.io/gorm"
)

// GoalRepository 学习目标数据仓储
type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) Create(ctx context.Context, g *model.Goal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GoalRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Goal, error) {
	var g model.Goal
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// List 列出用户的目标，按截止日期升序，status为空时返回全部
func (r *GoalRepository) List(ctx context.Context, userID uint, status model.GoalStatus) ([]*model.Goal, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var goals []*model.Goal
	err := q.Order("end_date ASC").Order("id ASC").Find(&goals).Error
	return goals, err
}

// UpdateOwned 更新指定字段，目标不存在或不属于该用户时返回 ErrNotFound
// 值未变化时MySQL的影响行数为0，所以先查询再更新
func (r *GoalRepository) UpdateOwned(ctx context.Context, id, userID uint, updates map[string]interface{}) (*model.Goal, error) {
	var g model.Goal
	err := dbPkg.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&g).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Goal{}).Where("id = ?", g.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&g, g.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r *GoalRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
