package repository

import (
	"context"

	"studyhub/internal/model"
	dbPkg "studyhub/pkg/db"

	"gorm.io/gorm"
)

// MessageRepository 消息数据仓储
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建MessageRepository实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// pairCondition 两个用户之间的私聊消息（双向）
const pairCondition = "(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)"

// Create 创建消息
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByID 根据ID获取消息
func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

// FetchConversationAndMarkRead 获取两人之间最近的limit条消息（按时间升序），
// 并在同一事务中将其中对方发给userID的未读消息标记为已读
// 只有本次返回的消息会被标记，更早的未读消息保持不变
func (r *MessageRepository) FetchConversationAndMarkRead(ctx context.Context, userID, otherUserID uint, limit int) ([]*model.Message, error) {
	var messages []*model.Message

	err := dbPkg.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where(pairCondition, userID, otherUserID, otherUserID, userID).
			Order("created_at DESC").
			Order("id DESC").
			Limit(limit).
			Find(&messages).Error; err != nil {
			return err
		}

		// 反转为升序
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}

		var unreadIDs []uint
		for _, m := range messages {
			if m.RecipientID == userID && m.SenderID == otherUserID && !m.IsRead {
				unreadIDs = append(unreadIDs, m.ID)
			}
		}
		if len(unreadIDs) == 0 {
			return nil
		}

		// 条件更新：并发读取时每条消息只会被翻转一次
		if err := tx.Model(&model.Message{}).
			Where("id IN ? AND recipient_id = ? AND is_read = ?", unreadIDs, userID, false).
			Update("is_read", true).Error; err != nil {
			return err
		}

		for _, m := range messages {
			if m.RecipientID == userID && m.SenderID == otherUserID {
				m.IsRead = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// conversationHead 每个会话对方的最新消息ID
type conversationHead struct {
	LastID  uint
	OtherID uint
}

// GetConversationHeads 获取用户每个会话的最新一条消息，按时间倒序
func (r *MessageRepository) GetConversationHeads(ctx context.Context, userID uint) ([]*model.Message, error) {
	var heads []conversationHead
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("MAX(id) AS last_id, CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS other_id", userID).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Group("other_id").
		Scan(&heads).Error
	if err != nil {
		return nil, err
	}
	if len(heads) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(heads))
	for _, h := range heads {
		ids = append(ids, h.LastID)
	}

	var messages []*model.Message
	err = r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}

// GetUnreadCountsBySender 按发送者统计用户的未读消息数
func (r *MessageRepository) GetUnreadCountsBySender(ctx context.Context, userID uint) (map[uint]int64, error) {
	var rows []struct {
		SenderID uint
		Cnt      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS cnt").
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Cnt
	}
	return counts, nil
}

// GetUnreadCount 获取用户未读消息数量
func (r *MessageRepository) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// DeleteBySender 物理删除消息，只能删除自己发送的消息
func (r *MessageRepository) DeleteBySender(ctx context.Context, messageID, senderID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", messageID, senderID).
		Delete(&model.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
