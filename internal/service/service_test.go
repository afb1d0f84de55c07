package service

import (
	"sync"
	"testing"
	"time"

	"studyhub/config"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"
	"studyhub/pkg/jwt"

	"gorm.io/gorm"
)

// published 记录实时推送调用
type published struct {
	SenderID    uint
	RecipientID uint
	Body        string
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []published
}

func (p *recordingPublisher) PublishDirect(senderID, recipientID uint, body string, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, published{senderID, recipientID, body})
}

type testEnv struct {
	db        *gorm.DB
	users     *UserService
	friends   *FriendService
	messages  *MessageService
	notes     *NoteService
	goals     *GoalService
	acts      *ActivityService
	analytics *AnalyticsService
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	pub := &recordingPublisher{}
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", Issuer: "studyhub", ExpireTime: time.Hour})

	return &testEnv{
		db:        db,
		users:     NewUserService(userRepo, friendRepo, jwtSvc, nil),
		friends:   NewFriendService(friendRepo, userRepo),
		messages:  NewMessageService(repository.NewMessageRepository(db), userRepo, pub),
		notes:     NewNoteService(repository.NewNoteRepository(db), friendRepo, userRepo),
		goals:     NewGoalService(repository.NewGoalRepository(db)),
		acts:      NewActivityService(repository.NewActivityRepository(db)),
		analytics: NewAnalyticsService(repository.NewAnalyticsRepository(db), friendRepo, userRepo),
		publisher: pub,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
