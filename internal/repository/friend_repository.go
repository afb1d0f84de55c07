package repository

import (
	"context"

	"studyhub/internal/model"
	dbPkg "studyhub/pkg/db"

	"gorm.io/gorm"
)

// FriendRepository 好友关系数据仓储
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// CreateIfAbsent 在事务中检查用户对是否已有关系，没有则创建
// 已存在（任意方向、任意状态）时返回 ErrDuplicate
// 并发插入由 uk_friend_pair 唯一索引兜底，同样返回 ErrDuplicate
func (r *FriendRepository) CreateIfAbsent(ctx context.Context, link *model.FriendLink) error {
	err := dbPkg.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.FriendLink{}).
			Where("pair_low = ? AND pair_high = ?", link.PairLow, link.PairHigh).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		return tx.Create(link).Error
	})
	return translate(err)
}

// GetByPair 获取两个用户之间的关系（与方向无关）
func (r *FriendRepository) GetByPair(ctx context.Context, a, b uint) (*model.FriendLink, error) {
	low, high := model.NormalizePair(a, b)
	var link model.FriendLink
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&link).Error
	if err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// Accept 接受好友请求
// 单条条件更新：只有接收者能把待确认的请求改为已接受
func (r *FriendRepository) Accept(ctx context.Context, requestID, recipientID uint) (*model.FriendLink, error) {
	res := r.db.WithContext(ctx).Model(&model.FriendLink{}).
		Where("id = ? AND recipient_id = ? AND status = ?", requestID, recipientID, model.LinkPending).
		Update("status", model.LinkAccepted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var link model.FriendLink
	if err := r.db.WithContext(ctx).First(&link, requestID).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// DeleteByPair 删除两人之间的关系（任意状态）
func (r *FriendRepository) DeleteByPair(ctx context.Context, a, b uint) error {
	low, high := model.NormalizePair(a, b)
	res := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		Delete(&model.FriendLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFriends 获取已接受关系的对方用户
func (r *FriendRepository) ListFriends(ctx context.Context, userID uint) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN friend_link ON (friend_link.requester_id = ? AND friend_link.recipient_id = `user`.id) OR (friend_link.recipient_id = ? AND friend_link.requester_id = `user`.id)", userID, userID).
		Where("friend_link.status = ?", model.LinkAccepted).
		Order("`user`.username").
		Find(&users).Error
	return users, err
}

// ListFriendIDs 获取好友ID列表
func (r *FriendRepository) ListFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var links []*model.FriendLink
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, model.LinkAccepted).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CounterpartOf(userID))
	}
	return ids, nil
}

// ListPendingIncoming 发给userID的待确认请求，最新的在前
func (r *FriendRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]*model.FriendLink, error) {
	var links []*model.FriendLink
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userID, model.LinkPending).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

// ListPendingOutgoing userID发出的待确认请求
func (r *FriendRepository) ListPendingOutgoing(ctx context.Context, userID uint) ([]*model.FriendLink, error) {
	var links []*model.FriendLink
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND status = ?", userID, model.LinkPending).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

// AreFriends 两人是否为已接受的好友
func (r *FriendRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	low, high := model.NormalizePair(a, b)
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FriendLink{}).
		Where("pair_low = ? AND pair_high = ? AND status = ?", low, high, model.LinkAccepted).
		Count(&count).Error
	return count > 0, err
}
