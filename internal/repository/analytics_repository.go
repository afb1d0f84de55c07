package repository

import (
	"context"
	"time"

	"studyhub/internal/model"

	"gorm.io/gorm"
)

// ActivityTotal 按 (活动类型, 科目) 分组的时长统计
type ActivityTotal struct {
	ActivityType    string `json:"activityType"`
	Subject         string `json:"subject"`
	TotalActivities int64  `json:"totalActivities"`
	TotalMinutes    int64  `json:"totalMinutes"`
}

// SubjectTotal 按科目统计
type SubjectTotal struct {
	Subject      string  `json:"subject"`
	StudyCount   int64   `json:"studyCount"`
	TotalMinutes int64   `json:"totalMinutes"`
	AvgMinutes   float64 `json:"avgMinutes"`
}

// GoalSummary 目标完成情况
type GoalSummary struct {
	TotalGoals     int64 `json:"totalGoals"`
	CompletedGoals int64 `json:"completedGoals"`
	ActiveGoals    int64 `json:"activeGoals"`
	TotalProgress  int64 `json:"totalProgress"`
}

// UserTotal 单个用户在时间段内的学习统计
type UserTotal struct {
	UserID          uint  `json:"userId"`
	ActivitiesCount int64 `json:"activitiesCount"`
	TotalMinutes    int64 `json:"totalMinutes"`
	SubjectsCount   int64 `json:"subjectsCount"`
}

// AnalyticsRepository 统计查询，聚合全部由数据库完成
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// ActivityTotals [from, to) 时间段内按活动类型和科目汇总
func (r *AnalyticsRepository) ActivityTotals(ctx context.Context, userID uint, from, to time.Time) ([]ActivityTotal, error) {
	var rows []ActivityTotal
	err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Select("activity_type, subject, COUNT(*) AS total_activities, COALESCE(SUM(duration_minutes), 0) AS total_minutes").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Group("activity_type, subject").
		Order("total_minutes DESC").
		Scan(&rows).Error
	return rows, err
}

// SubjectTotals 按科目汇总全部历史活动，未填写科目的不计入
func (r *AnalyticsRepository) SubjectTotals(ctx context.Context, userID uint) ([]SubjectTotal, error) {
	var rows []SubjectTotal
	err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Select("subject, COUNT(*) AS study_count, COALESCE(SUM(duration_minutes), 0) AS total_minutes, AVG(duration_minutes) AS avg_minutes").
		Where("user_id = ? AND subject <> ''", userID).
		Group("subject").
		Order("total_minutes DESC").
		Scan(&rows).Error
	return rows, err
}

// GoalSummary 目标统计；from/to 非nil时只统计开始日期在该区间内的目标
func (r *AnalyticsRepository) GoalSummary(ctx context.Context, userID uint, from, to *time.Time) (*GoalSummary, error) {
	q := r.db.WithContext(ctx).Model(&model.Goal{}).
		Select("COUNT(*) AS total_goals, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_goals, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_goals, "+
			"COALESCE(SUM(progress), 0) AS total_progress", model.GoalCompleted, model.GoalActive).
		Where("user_id = ?", userID)
	if from != nil && to != nil {
		q = q.Where("start_date >= ? AND start_date < ?", *from, *to)
	}

	var summary GoalSummary
	if err := q.Scan(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// UserTotals 一组用户在 [from, to) 内的学习统计，没有活动的用户不出现在结果中
func (r *AnalyticsRepository) UserTotals(ctx context.Context, userIDs []uint, from, to time.Time) (map[uint]UserTotal, error) {
	result := make(map[uint]UserTotal, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []UserTotal
	err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Select("user_id, COUNT(*) AS activities_count, COALESCE(SUM(duration_minutes), 0) AS total_minutes, COUNT(DISTINCT subject) AS subjects_count").
		Where("user_id IN ? AND created_at >= ? AND created_at < ?", userIDs, from, to).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row
	}
	return result, nil
}
