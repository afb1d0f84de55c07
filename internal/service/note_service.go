package service

import (
	"context"
	"errors"
	"strings"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
)

// NoteService 学习笔记及分享
type NoteService struct {
	noteRepo   *repository.NoteRepository
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

func NewNoteService(noteRepo *repository.NoteRepository, friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *NoteService {
	return &NoteService{noteRepo: noteRepo, friendRepo: friendRepo, userRepo: userRepo}
}

// NoteInput 创建/修改笔记，修改时nil字段保持原值
type NoteInput struct {
	Title   *string
	Content *string
	Subject *string
}

func (s *NoteService) Create(ctx context.Context, userID uint, in NoteInput) (*model.Note, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.InvalidArgument("title", "title is required")
	}
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, apperr.InvalidArgument("content", "content is required")
	}
	n := &model.Note{
		UserID:  userID,
		Title:   strings.TrimSpace(*in.Title),
		Content: *in.Content,
	}
	if in.Subject != nil {
		n.Subject = strings.TrimSpace(*in.Subject)
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		return nil, apperr.Internal(err)
	}
	return n, nil
}

func (s *NoteService) ListOwn(ctx context.Context, userID uint) ([]*model.Note, error) {
	notes, err := s.noteRepo.ListOwned(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return notes, nil
}

// ListSharedWithMe 别人分享给我的笔记，附作者资料
func (s *NoteService) ListSharedWithMe(ctx context.Context, userID uint) ([]model.SharedNoteView, error) {
	shares, notes, err := s.noteRepo.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	authorIDs := make([]uint, 0, len(shares))
	for _, sh := range shares {
		authorIDs = append(authorIDs, sh.SharedByUserID)
	}
	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]model.SharedNoteView, 0, len(shares))
	for _, sh := range shares {
		n, ok := notes[sh.NoteID]
		if !ok {
			continue
		}
		view := model.SharedNoteView{Note: *n, SharedAt: sh.CreatedAt}
		if u, ok := authors[sh.SharedByUserID]; ok {
			view.Author = u.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}

// Share 将自己的笔记分享给已接受的好友
func (s *NoteService) Share(ctx context.Context, userID, noteID, friendID uint) (*model.SharedNote, error) {
	if _, err := s.get(ctx, userID, noteID); err != nil {
		return nil, err
	}
	if friendID == 0 || friendID == userID {
		return nil, apperr.InvalidArgument("friendId", "invalid friendId")
	}
	ok, err := s.friendRepo.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.InvalidArgument("friendId", "notes can only be shared with friends")
	}

	share := &model.SharedNote{NoteID: noteID, SharedWithUserID: friendID, SharedByUserID: userID}
	if err := s.noteRepo.Share(ctx, share); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("note already shared with this user")
		}
		return nil, apperr.Internal(err)
	}
	return share, nil
}

func (s *NoteService) Update(ctx context.Context, userID, noteID uint, in NoteInput) (*model.Note, error) {
	n, err := s.get(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.InvalidArgument("title", "title cannot be empty")
		}
		n.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		n.Content = *in.Content
	}
	if in.Subject != nil {
		n.Subject = strings.TrimSpace(*in.Subject)
	}
	if err := s.noteRepo.Save(ctx, n); err != nil {
		return nil, apperr.Internal(err)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID uint) error {
	if err := s.noteRepo.DeleteOwned(ctx, noteID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("note not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *NoteService) get(ctx context.Context, userID, noteID uint) (*model.Note, error) {
	n, err := s.noteRepo.GetOwned(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("note not found")
		}
		return nil, apperr.Internal(err)
	}
	return n, nil
}
