package service

import (
	"context"
	"errors"
	"strings"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
)

// ActivityService 学习活动
type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// ActivityInput 创建/修改活动的参数
// 修改时nil字段保持原值
type ActivityInput struct {
	Title           *string
	Description     *string
	ActivityType    *string
	Subject         *string
	DurationMinutes *int
	Category        *string
	Tags            *string
}

// Create 创建活动，title 和 activityType 必填
func (s *ActivityService) Create(ctx context.Context, userID uint, in ActivityInput) (*model.Activity, error) {
	a := &model.Activity{UserID: userID}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.InvalidArgument("title", "title is required")
	}
	if in.ActivityType == nil || strings.TrimSpace(*in.ActivityType) == "" {
		return nil, apperr.InvalidArgument("activityType", "activityType is required")
	}
	if err := applyActivityInput(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

// List 列出活动
func (s *ActivityService) List(ctx context.Context, userID uint, filter repository.ActivityFilter) ([]*model.Activity, error) {
	list, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *ActivityService) Get(ctx context.Context, userID, id uint) (*model.Activity, error) {
	a, err := s.repo.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("activity not found")
		}
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func (s *ActivityService) Update(ctx context.Context, userID, id uint, in ActivityInput) (*model.Activity, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.InvalidArgument("title", "title cannot be empty")
	}
	if in.ActivityType != nil && strings.TrimSpace(*in.ActivityType) == "" {
		return nil, apperr.InvalidArgument("activityType", "activityType cannot be empty")
	}
	if err := applyActivityInput(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func (s *ActivityService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.DeleteOwned(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("activity not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

func applyActivityInput(a *model.Activity, in ActivityInput) error {
	if in.DurationMinutes != nil {
		if *in.DurationMinutes < 0 {
			return apperr.InvalidArgument("durationMinutes", "durationMinutes must not be negative")
		}
		a.DurationMinutes = *in.DurationMinutes
	}
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.ActivityType != nil {
		a.ActivityType = strings.TrimSpace(*in.ActivityType)
	}
	if in.Subject != nil {
		a.Subject = strings.TrimSpace(*in.Subject)
	}
	if in.Category != nil {
		a.Category = strings.TrimSpace(*in.Category)
	}
	if in.Tags != nil {
		a.Tags = *in.Tags
	}
	return nil
}
