package service

import (
	"context"
	"sort"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/pkg/apperr"
)

// AnalyticsService 学习统计
// 时间范围在这里计算，聚合交给数据库
type AnalyticsService struct {
	repo       *repository.AnalyticsRepository
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
	now        func() time.Time
}

func NewAnalyticsService(repo *repository.AnalyticsRepository, friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, friendRepo: friendRepo, userRepo: userRepo, now: time.Now}
}

// PeriodReport 周/月统计
type PeriodReport struct {
	PeriodStart     time.Time                  `json:"periodStart"`
	PeriodEnd       time.Time                  `json:"periodEnd"`
	Activities      []repository.ActivityTotal `json:"activities"`
	GoalsProgress   *repository.GoalSummary    `json:"goalsProgress"`
	TotalStudyHours float64                    `json:"totalStudyHours"`
}

// SubjectReport 按科目统计
type SubjectReport struct {
	Subjects      []repository.SubjectTotal `json:"subjectAnalytics"`
	TotalSubjects int                       `json:"totalSubjects"`
}

// GroupMember 好友组对比中的一个成员
type GroupMember struct {
	User model.UserSummary `json:"user"`
	repository.UserTotal
}

// WeekStart 返回t所在ISO周的周一零点
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Weekly 某一周的统计，weekStart 为空时取本周（周一开始）
func (s *AnalyticsService) Weekly(ctx context.Context, userID uint, weekStart string) (*PeriodReport, error) {
	start := WeekStart(s.now())
	if weekStart != "" {
		t, err := time.ParseInLocation("2006-01-02", weekStart, time.Local)
		if err != nil {
			return nil, apperr.InvalidArgument("weekStart", "weekStart must be YYYY-MM-DD")
		}
		start = t
	}
	end := start.AddDate(0, 0, 7)

	// 目标统计不限时间范围
	return s.period(ctx, userID, start, end, false)
}

// Monthly 某一月的统计，month 为空时取本月
func (s *AnalyticsService) Monthly(ctx context.Context, userID uint, month string) (*PeriodReport, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return nil, apperr.InvalidArgument("month", "month must be YYYY-MM")
		}
		start = t
	}
	end := start.AddDate(0, 1, 0)

	// 只统计当月开始的目标
	return s.period(ctx, userID, start, end, true)
}

func (s *AnalyticsService) period(ctx context.Context, userID uint, start, end time.Time, goalsInPeriod bool) (*PeriodReport, error) {
	totals, err := s.repo.ActivityTotals(ctx, userID, start, end)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var goals *repository.GoalSummary
	if goalsInPeriod {
		goals, err = s.repo.GoalSummary(ctx, userID, &start, &end)
	} else {
		goals, err = s.repo.GoalSummary(ctx, userID, nil, nil)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var minutes int64
	for _, t := range totals {
		minutes += t.TotalMinutes
	}
	if totals == nil {
		totals = []repository.ActivityTotal{}
	}
	return &PeriodReport{
		PeriodStart:     start,
		PeriodEnd:       end,
		Activities:      totals,
		GoalsProgress:   goals,
		TotalStudyHours: float64(minutes) / 60,
	}, nil
}

// Subjects 按科目统计全部历史
func (s *AnalyticsService) Subjects(ctx context.Context, userID uint) (*SubjectReport, error) {
	rows, err := s.repo.SubjectTotals(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if rows == nil {
		rows = []repository.SubjectTotal{}
	}
	return &SubjectReport{Subjects: rows, TotalSubjects: len(rows)}, nil
}

// GroupComparison 自己和好友本周的学习对比，按总时长倒序
func (s *AnalyticsService) GroupComparison(ctx context.Context, userID uint) ([]GroupMember, error) {
	friendIDs, err := s.friendRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	ids := append([]uint{userID}, friendIDs...)

	start := WeekStart(s.now())
	totals, err := s.repo.UserTotals(ctx, ids, start, start.AddDate(0, 0, 7))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	members := make([]GroupMember, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		total := totals[id]
		total.UserID = id
		members = append(members, GroupMember{User: u.Summary(), UserTotal: total})
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].TotalMinutes > members[j].TotalMinutes
	})
	return members, nil
}
