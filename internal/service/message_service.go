package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
	"studyhub/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultConversationLimit 会话消息默认/最大条数
	DefaultConversationLimit = 100
)

// DirectPublisher 消息落库后向实时通道推送
// 推送是尽力而为的，失败不影响已保存的消息
type DirectPublisher interface {
	PublishDirect(senderID, recipientID uint, body string, sentAt time.Time)
}

// MessageService 私信服务
type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	publisher   DirectPublisher
}

// NewMessageService 创建MessageService实例，publisher 可以为nil
func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, publisher DirectPublisher) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Send 发送私信
// 不要求双方为好友，也允许发给自己
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uint, body string, imageRef *string) (*model.Message, error) {
	if recipientID == 0 {
		return nil, apperr.InvalidArgument("recipientId", "recipientId is required")
	}
	if imageRef != nil && strings.TrimSpace(*imageRef) == "" {
		imageRef = nil
	}
	if strings.TrimSpace(body) == "" && imageRef == nil {
		return nil, apperr.InvalidArgument("body", "message body is required")
	}

	exists, err := s.userRepo.Exists(ctx, recipientID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !exists {
		return nil, apperr.NotFound("recipient not found")
	}

	message := &model.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		ImageRef:    imageRef,
		IsRead:      false,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperr.Internal(err)
	}

	if s.publisher != nil {
		s.publisher.PublishDirect(senderID, recipientID, message.Body, message.CreatedAt)
	}

	logger.Debug("私信已发送",
		zap.Uint("message_id", message.ID),
		zap.Uint("sender_id", senderID),
		zap.Uint("recipient_id", recipientID),
	)
	return message, nil
}

// GetConversation 获取与对方的最近消息（升序），并将返回的对方消息标记为已读
// limit <= 0 或超过上限时使用默认值
func (s *MessageService) GetConversation(ctx context.Context, userID, otherUserID uint, limit int) ([]*model.Message, error) {
	if limit <= 0 || limit > DefaultConversationLimit {
		limit = DefaultConversationLimit
	}
	messages, err := s.messageRepo.FetchConversationAndMarkRead(ctx, userID, otherUserID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return messages, nil
}

// ListConversations 会话列表，每个对方一条，按最新消息时间倒序
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]model.Conversation, error) {
	heads, err := s.messageRepo.GetConversationHeads(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(heads) == 0 {
		return []model.Conversation{}, nil
	}

	unread, err := s.messageRepo.GetUnreadCountsBySender(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	otherIDs := make([]uint, 0, len(heads))
	for _, m := range heads {
		otherIDs = append(otherIDs, m.CounterpartOf(userID))
	}
	users, err := s.userRepo.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	conversations := make([]model.Conversation, 0, len(heads))
	for _, m := range heads {
		otherID := m.CounterpartOf(userID)
		conv := model.Conversation{
			OtherUserID:     otherID,
			LastMessage:     m.Body,
			LastMessageID:   m.ID,
			LastMessageTime: m.CreatedAt,
			UnreadCount:     unread[otherID],
		}
		if u, ok := users[otherID]; ok {
			conv.OtherUser = u.Summary()
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

// UnreadCount 未读消息总数
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.messageRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// DeleteMessage 删除消息，只能删除自己发送的
// 消息不存在或不是自己发送的都返回 NotFound
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, callerID uint) error {
	if err := s.messageRepo.DeleteBySender(ctx, messageID, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
