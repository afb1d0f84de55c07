package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
)

// GoalService 学习目标
type GoalService struct {
	repo *repository.GoalRepository
}

func NewGoalService(repo *repository.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

// GoalInput 创建目标的参数
type GoalInput struct {
	Title       string
	Description string
	GoalType    string
	TargetValue int
	TargetUnit  string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create 创建目标，开始日期默认为当前时间
func (s *GoalService) Create(ctx context.Context, userID uint, in GoalInput) (*model.Goal, error) {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return nil, apperr.InvalidArgument("title", "title is required")
	case in.TargetValue <= 0:
		return nil, apperr.InvalidArgument("targetValue", "targetValue must be positive")
	case in.EndDate == nil:
		return nil, apperr.InvalidArgument("endDate", "endDate is required")
	}

	start := time.Now()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if in.EndDate.Before(start) {
		return nil, apperr.InvalidArgument("endDate", "endDate must not be before startDate")
	}

	g := &model.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		GoalType:    strings.TrimSpace(in.GoalType),
		TargetValue: in.TargetValue,
		TargetUnit:  strings.TrimSpace(in.TargetUnit),
		Status:      model.GoalActive,
		StartDate:   start,
		EndDate:     *in.EndDate,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, apperr.Internal(err)
	}
	return g, nil
}

// List 列出目标，status 为空时返回全部
func (s *GoalService) List(ctx context.Context, userID uint, status string) ([]*model.Goal, error) {
	st := model.GoalStatus(status)
	if st != "" && !st.Valid() {
		return nil, apperr.InvalidArgument("status", "invalid goal status")
	}
	goals, err := s.repo.List(ctx, userID, st)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return goals, nil
}

// UpdateProgress 更新进度
func (s *GoalService) UpdateProgress(ctx context.Context, userID, id uint, progress int) (*model.Goal, error) {
	if progress < 0 {
		return nil, apperr.InvalidArgument("progress", "progress must not be negative")
	}
	return s.update(ctx, userID, id, map[string]interface{}{"progress": progress})
}

// UpdateStatus 更新状态
func (s *GoalService) UpdateStatus(ctx context.Context, userID, id uint, status string) (*model.Goal, error) {
	st := model.GoalStatus(status)
	if !st.Valid() {
		return nil, apperr.InvalidArgument("status", "status must be one of active, completed, abandoned")
	}
	return s.update(ctx, userID, id, map[string]interface{}{"status": st})
}

func (s *GoalService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.DeleteOwned(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("goal not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *GoalService) update(ctx context.Context, userID, id uint, updates map[string]interface{}) (*model.Goal, error) {
	g, err := s.repo.UpdateOwned(ctx, id, userID, updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("goal not found")
		}
		return nil, apperr.Internal(err)
	}
	return g, nil
}
