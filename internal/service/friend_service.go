package service

import (
	"context"
	"errors"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
	"studyhub/pkg/logger"

	"go.uber.org/zap"
)

// FriendService 好友关系管理
// 任意两个用户之间最多一条关系：pending -> accepted，删除即解除
type FriendService struct {
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

func NewFriendService(friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *FriendService {
	return &FriendService{friendRepo: friendRepo, userRepo: userRepo}
}

// SendRequest 发送好友请求
func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID uint) (*model.FriendLink, error) {
	if recipientID == 0 {
		return nil, apperr.InvalidArgument("recipientId", "recipientId is required")
	}
	if requesterID == recipientID {
		return nil, apperr.InvalidArgument("recipientId", "cannot send friend request to yourself")
	}

	exists, err := s.userRepo.Exists(ctx, recipientID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !exists {
		return nil, apperr.NotFound("user not found")
	}

	link := model.NewFriendRequest(requesterID, recipientID)
	if err := s.friendRepo.CreateIfAbsent(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("friend request already exists or users are already friends")
		}
		return nil, apperr.Internal(err)
	}

	logger.Info("好友请求已发送",
		zap.Uint("request_id", link.ID),
		zap.Uint("requester_id", requesterID),
		zap.Uint("recipient_id", recipientID),
	)
	return link, nil
}

// AcceptRequest 接受好友请求，只有接收者可以接受待确认的请求
// 请求不存在、调用者不是接收者、请求已被接受，统一返回 NotFound
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, callerID uint) (*model.FriendLink, error) {
	link, err := s.friendRepo.Accept(ctx, requestID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("friend request not found")
		}
		return nil, apperr.Internal(err)
	}

	logger.Info("好友请求已接受", zap.Uint("request_id", requestID), zap.Uint("user_id", callerID))
	return link, nil
}

// RemoveLink 删除好友或撤回/拒绝请求（任意状态）
func (s *FriendService) RemoveLink(ctx context.Context, callerID, otherUserID uint) error {
	if err := s.friendRepo.DeleteByPair(ctx, callerID, otherUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("friendship not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// ListFriends 已接受的好友
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]model.UserSummary, error) {
	users, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return summaries(users), nil
}

// ListPendingIncoming 收到的待确认请求及发起者资料
func (s *FriendService) ListPendingIncoming(ctx context.Context, userID uint) ([]model.FriendRequestView, error) {
	links, err := s.friendRepo.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.requestViews(ctx, links, userID)
}

// ListPendingOutgoing 发出的待确认请求及接收者资料
func (s *FriendService) ListPendingOutgoing(ctx context.Context, userID uint) ([]model.FriendRequestView, error) {
	links, err := s.friendRepo.ListPendingOutgoing(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.requestViews(ctx, links, userID)
}

// StatusBetween 两个用户之间的关系状态
func (s *FriendService) StatusBetween(ctx context.Context, a, b uint) (model.RelationStatus, error) {
	link, err := s.friendRepo.GetByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.RelationNone, nil
		}
		return model.RelationNone, apperr.Internal(err)
	}
	return link.Relation(), nil
}

// AreFriends 是否为已接受的好友
func (s *FriendService) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	ok, err := s.friendRepo.AreFriends(ctx, a, b)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return ok, nil
}

// requestViews 为请求附上对方的资料摘要
func (s *FriendService) requestViews(ctx context.Context, links []*model.FriendLink, viewerID uint) ([]model.FriendRequestView, error) {
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CounterpartOf(viewerID))
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]model.FriendRequestView, 0, len(links))
	for _, l := range links {
		view := model.FriendRequestView{
			RequestID: l.ID,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
		}
		if u, ok := users[l.CounterpartOf(viewerID)]; ok {
			view.User = u.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}
