package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
	"studyhub/pkg/logger"
	"studyhub/pkg/storage"

	"go.uber.org/zap"
)

// MemoryService 照片回忆，图片保存在对象存储中
type MemoryService struct {
	repo         *repository.MemoryRepository
	friendRepo   *repository.FriendRepository
	store        storage.Storage
	maxImageSize int64
}

func NewMemoryService(repo *repository.MemoryRepository, friendRepo *repository.FriendRepository, store storage.Storage, maxImageSize int64) *MemoryService {
	return &MemoryService{repo: repo, friendRepo: friendRepo, store: store, maxImageSize: maxImageSize}
}

// MemoryUpload 上传参数
type MemoryUpload struct {
	Title       string
	Description string
	Tags        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload 保存图片并创建记录，记录保存失败时删除已上传的图片
func (s *MemoryService) Upload(ctx context.Context, userID uint, in MemoryUpload) (*model.Memory, error) {
	if in.Body == nil {
		return nil, apperr.InvalidArgument("image", "image file is required")
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, apperr.InvalidArgument("image", "only image files are allowed")
	}
	if s.maxImageSize > 0 && in.Size > s.maxImageSize {
		return nil, apperr.InvalidArgument("image", "image is too large")
	}

	obj, err := s.store.Put(ctx, storage.GenerateKey("memories", in.Filename), in.Body, in.ContentType, in.Size)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	m := &model.Memory{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImageRef:    obj.URL,
		ImageKey:    obj.Key,
		Tags:        in.Tags,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.removeObject(ctx, obj.Key)
		return nil, apperr.Internal(err)
	}
	return m, nil
}

func (s *MemoryService) ListOwn(ctx context.Context, userID uint) ([]*model.Memory, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

// ListFriend 好友的回忆，非好友返回 NotFound
func (s *MemoryService) ListFriend(ctx context.Context, userID, friendID uint) ([]*model.Memory, error) {
	ok, err := s.friendRepo.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok || userID == friendID {
		return nil, apperr.NotFound("friend not found")
	}
	return s.ListOwn(ctx, friendID)
}

// Delete 删除记录并尽力删除图片
func (s *MemoryService) Delete(ctx context.Context, userID, id uint) error {
	m, err := s.repo.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("memory not found")
		}
		return apperr.Internal(err)
	}
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("memory not found")
		}
		return apperr.Internal(err)
	}
	s.removeObject(ctx, m.ImageKey)
	return nil
}

func (s *MemoryService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn("删除图片失败", zap.String("key", key), zap.Error(err))
	}
}
