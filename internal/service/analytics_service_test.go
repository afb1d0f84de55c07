package service

import (
	"context"
	"testing"
	"time"

	"studyhub/internal/model"
	"studyhub/internal/testutil"
	"studyhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	// 2024-05-15 是周三
	wed := time.Date(2024, 5, 15, 13, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), WeekStart(wed))

	sun := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), WeekStart(sun))

	mon := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, mon, WeekStart(mon))
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, env.db, "alice")
	b := testutil.CreateUser(t, env.db, "bob")
	c := testutil.CreateUser(t, env.db, "carol")

	now := time.Now()
	activities := []model.Activity{
		{UserID: a.ID, Title: "1", ActivityType: "study", Subject: "math", DurationMinutes: 60, CreatedAt: now},
		{UserID: a.ID, Title: "2", ActivityType: "study", Subject: "math", DurationMinutes: 30, CreatedAt: now},
		{UserID: a.ID, Title: "3", ActivityType: "reading", Subject: "", DurationMinutes: 30, CreatedAt: now},
		{UserID: a.ID, Title: "old", ActivityType: "study", Subject: "history", DurationMinutes: 100, CreatedAt: now.AddDate(0, -3, 0)},
		{UserID: b.ID, Title: "b", ActivityType: "study", Subject: "physics", DurationMinutes: 200, CreatedAt: now},
		{UserID: c.ID, Title: "c", ActivityType: "study", Subject: "art", DurationMinutes: 500, CreatedAt: now},
	}
	require.NoError(t, env.db.Create(&activities).Error)

	end := now.AddDate(0, 0, 10)
	_, err := env.goals.Create(ctx, a.ID, GoalInput{Title: "g", TargetValue: 5, EndDate: &end})
	require.NoError(t, err)

	weekly, err := env.analytics.Weekly(ctx, a.ID, "")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, weekly.TotalStudyHours, 0.001)
	require.Len(t, weekly.Activities, 2)
	assert.Equal(t, "math", weekly.Activities[0].Subject)
	assert.Equal(t, int64(2), weekly.Activities[0].TotalActivities)
	assert.Equal(t, int64(90), weekly.Activities[0].TotalMinutes)
	assert.Equal(t, int64(1), weekly.GoalsProgress.TotalGoals)
	assert.Equal(t, int64(1), weekly.GoalsProgress.ActiveGoals)

	_, err = env.analytics.Weekly(ctx, a.ID, "15/05/2024")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	monthly, err := env.analytics.Monthly(ctx, a.ID, "")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, monthly.TotalStudyHours, 0.001)

	subjects, err := env.analytics.Subjects(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 2, subjects.TotalSubjects)
	assert.Equal(t, "history", subjects.Subjects[0].Subject)
	assert.Equal(t, "math", subjects.Subjects[1].Subject)
	assert.InDelta(t, 45.0, subjects.Subjects[1].AvgMinutes, 0.001)

	// 只有已接受的好友参与对比
	link, err := env.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = env.friends.AcceptRequest(ctx, link.ID, b.ID)
	require.NoError(t, err)
	_, err = env.friends.SendRequest(ctx, a.ID, c.ID)
	require.NoError(t, err)

	group, err := env.analytics.GroupComparison(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, group, 2)
	assert.Equal(t, b.ID, group[0].User.ID)
	assert.Equal(t, int64(200), group[0].TotalMinutes)
	assert.Equal(t, a.ID, group[1].User.ID)
	assert.Equal(t, int64(120), group[1].TotalMinutes)
	assert.Equal(t, int64(2), group[1].SubjectsCount)
}
